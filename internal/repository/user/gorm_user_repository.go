package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/skinai/go-skinai/internal/domain"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create - Enhanced with input validation and secure logging
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.validateUserInput(user); err != nil {
		log.Printf("[UserRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// Secure logging - no sensitive data exposed
		log.Printf("[UserRepository] Database error during user creation: %v", err)
		return nil, errors.New("database error creating user")
	}

	log.Printf("[UserRepository] User created successfully with ID: %d", user.ID)
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := r.validateEmail(email); err != nil {
		return nil, fmt.Errorf("email validation failed: %w", err)
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return r.handleFindError(err, &user)
}

// Update - Enhanced with validation and secure logging
func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("invalid user for update")
	}

	if err := r.validateUserInput(user); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		log.Printf("[UserRepository] Database error updating user ID %d: %v", user.ID, err)
		return errors.New("database error updating user")
	}

	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, userID uint) error {
	if userID == 0 {
		return errors.New("invalid user ID")
	}

	result := r.db.WithContext(ctx).Delete(&domain.User{}, userID)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error deleting user ID %d: %v", userID, result.Error)
		return errors.New("database error deleting user")
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ===== SECURITY VALIDATION HELPERS =====

func (r *gormUserRepository) validateUserInput(user *domain.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	if err := r.validateEmail(user.Email); err != nil {
		return fmt.Errorf("email validation: %w", err)
	}

	if len(user.Name) > 100 {
		return errors.New("name must be 100 characters or less")
	}

	return nil
}

func (r *gormUserRepository) validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if len(email) > 254 || !strings.Contains(email, "@") {
		return errors.New("invalid email format")
	}

	return nil
}

// handleFindError - Secure error handling without data leakage
func (r *gormUserRepository) handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	log.Printf("[UserRepository] Database query error: %v", err)
	return nil, errors.New("database query failed")
}
