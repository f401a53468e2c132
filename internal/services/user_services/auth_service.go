package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/skinai/go-skinai/internal/auth"
	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/repository/user"
)

// ErrInvalidCredentials is returned by SignIn for an unknown email or a
// wrong password; the two cases are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const passwordMinLength = 8

// AuthService is the authentication gateway: local sign-in/sign-up against
// the user repository, issuing a signed JWT on success.
type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		logger:       logger,
	}
}

// SignIn authenticates a user and returns the account plus a JWT token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.logger.Warn("sign-in attempt with empty credentials",
			"has_email", email != "",
			"has_password", password != "")
		return nil, "", ErrInvalidCredentials
	}

	account, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("sign-in failed - user not found", "email", maskEmail(email))
		return nil, "", ErrInvalidCredentials
	}

	if err := account.ValidatePassword(password); err != nil {
		s.logger.Warn("sign-in failed - invalid password",
			"email", maskEmail(email),
			"user_id", account.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(account.ID, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", account.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("sign-in successful", "email", maskEmail(email), "user_id", account.ID)
	return account, token, nil
}

// SignUp registers a new account and returns it plus a JWT token. The
// avatar is the first letter of the display name, upper-cased.
func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" {
		// Sign-in style default: the email local part.
		name = strings.SplitN(email, "@", 2)[0]
	}

	if err := s.validateRegistrationInput(email, password, name); err != nil {
		s.logger.Warn("registration validation failed", "email", maskEmail(email), "error", err.Error())
		return nil, "", fmt.Errorf("validation failed: %w", err)
	}

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		s.logger.Warn("registration failed - email already exists",
			"email", maskEmail(email),
			"existing_user_id", existing.ID)
		return nil, "", errors.New("an account with this email already exists")
	}

	account := &domain.User{
		Name:   name,
		Email:  email,
		Avatar: domain.AvatarFor(name),
	}
	if err := account.IsValid(); err != nil {
		s.logger.Warn("registration validation failed", "email", maskEmail(email), "error", err.Error())
		return nil, "", fmt.Errorf("validation failed: %w", err)
	}
	if err := account.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err, "email", maskEmail(email))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, account)
	if err != nil {
		s.logger.Error("user creation failed", "error", err, "email", maskEmail(email))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := auth.GenerateJWT(created.ID, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", created.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user registered successfully", "email", maskEmail(email), "user_id", created.ID)
	return created, token, nil
}

// ValidateJWTToken validates a token and returns the account id it carries.
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	return auth.ValidateToken(tokenString, []byte(s.jwtSecretKey))
}

// GetUserByID loads the account for an id carried by a validated token.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *AuthService) validateRegistrationInput(email, password, name string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email validation: invalid email format")
	}
	if len(password) < passwordMinLength {
		return fmt.Errorf("password validation: password must be at least %d characters", passwordMinLength)
	}
	if len(name) > 100 {
		return fmt.Errorf("name validation: name must be 100 characters or less")
	}
	return nil
}
