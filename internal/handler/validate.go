package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/service"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator builds the shared validator. Field errors report the JSON
// name ("channelName") rather than the Go name, and the "category" tag
// accepts exactly the values of model.Categories.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.ValidCategory(fl.Field().String())
	})

	return v
}

// decodeJSON reads the request body into dst and runs struct validation.
// Both failures come back as ValidationError so writeError answers 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("handler: validating request: %w", err)
	}

	// Report the first failing field, like the services do.
	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please provide a valid email"
	case "category":
		return "Please select a valid category"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// pageRequest reads ?page= and ?limit=. Missing or malformed values fall
// back to the service defaults.
func pageRequest(r *http.Request) service.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return service.PageRequest{Page: page, Limit: limit}
}
