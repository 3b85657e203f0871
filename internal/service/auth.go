package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/auth"
	"github.com/sakif/videohub/internal/metrics"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/repository"
)

// AuthService handles accounts: registration, password and GitHub login,
// and the signed-in user's profile.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                               ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   m,
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user with the token issued for them, so
// the handler can answer and set the cookie in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// ProfileUpdate carries the fields of PUT /auth/profile. A nil field is
// left unchanged.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Avatar   *string
}

var errBadCredentials = apperror.Unauthenticated("Invalid credentials")

// Register creates an email/password account and signs it in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username, err := validUsername(username)
	if err != nil {
		return nil, err
	}
	email, err = validEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       model.DefaultUserAvatar,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.metrics.Registered()
	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

// Login checks an email/password pair. Every failure, including an
// unknown email or a GitHub-only account, is the same Unauthenticated
// error so the response does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "Please provide email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.metrics.Login("password", false)
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", email, err)
	}

	if user.PasswordHash == "" {
		s.metrics.Login("password", false)
		return nil, errBadCredentials
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.metrics.Login("password", false)
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.metrics.Login("password", true)
	s.logger.Info("user logged in", slog.String("userID", user.ID))

	full, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading user %s: %w", user.ID, err)
	}
	return s.issue(full)
}

// LoginOrRegisterGitHub signs in the owner of a GitHub profile, creating the
// account on first use. GitHub may hide the email address; the account then
// gets the GitHub noreply address for that login.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	email := strings.ToLower(strings.TrimSpace(ghUser.Email))
	if email == "" {
		email = strings.ToLower(ghUser.Login) + "@users.noreply.github.com"
	}
	avatar := ghUser.AvatarURL
	if avatar == "" {
		avatar = model.DefaultUserAvatar
	}

	githubID := ghUser.ID
	user := &model.User{
		Username: ghUser.Login,
		Email:    email,
		Avatar:   avatar,
		GitHubID: &githubID,
	}
	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		s.metrics.Login("github", false)
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.metrics.Login("github", true)
	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	full, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading user %s: %w", user.ID, err)
	}
	return s.issue(full)
}

// Me returns the user with every derived back-reference list.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes username, email or avatar. Uniqueness is enforced
// by the store and reported as a validation error.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if user.Username, err = validUsername(*in.Username); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		if user.Email, err = validEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: updating user %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func validUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if n := len([]rune(username)); n < MinUsernameLength || n > MaxUsernameLength {
		return "", apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	return username, nil
}

func validEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return "", apperror.ValidationFailed("email", "Please provide a valid email")
	}
	return email, nil
}
