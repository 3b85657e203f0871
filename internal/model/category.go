package model

// Category is the closed set of topics a Channel or Video can be filed under.
type Category string

const (
	CategoryTechnology        Category = "Technology"
	CategoryEducation         Category = "Education"
	CategoryEntertainment     Category = "Entertainment"
	CategoryGaming            Category = "Gaming"
	CategoryMusic             Category = "Music"
	CategorySports            Category = "Sports"
	CategoryNews              Category = "News"
	CategoryComedy            Category = "Comedy"
	CategoryFilmAnimation     Category = "Film & Animation"
	CategoryAutosVehicles     Category = "Autos & Vehicles"
	CategoryPetsAnimals       Category = "Pets & Animals"
	CategoryTravelEvents      Category = "Travel & Events"
	CategoryHowtoStyle        Category = "Howto & Style"
	CategoryScienceTechnology Category = "Science & Technology"
	CategoryNonprofits        Category = "Nonprofits & Activism"
	CategoryPeopleBlogs       Category = "People & Blogs"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryTechnology,
	CategoryEducation,
	CategoryEntertainment,
	CategoryGaming,
	CategoryMusic,
	CategorySports,
	CategoryNews,
	CategoryComedy,
	CategoryFilmAnimation,
	CategoryAutosVehicles,
	CategoryPetsAnimals,
	CategoryTravelEvents,
	CategoryHowtoStyle,
	CategoryScienceTechnology,
	CategoryNonprofits,
	CategoryPeopleBlogs,
}

// ValidCategory reports whether s names one of Categories exactly.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}
