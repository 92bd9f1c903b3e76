// Package auth registers users and checks their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid username/email or password."

type UserStore interface {
	CreateUser(ctx context.Context, username string, email *string, passwordHash []byte) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	users UserStore
	cost  int
}

func NewService(users UserStore) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

// Register creates a user with a zero balance. The email is optional.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	if username == "" || password == "" {
		return nil, models.Validationf("Please fill out all fields.")
	}
	if !util.ValidateUsername(username) {
		return nil, models.Validationf("Username must be between 3 and 30 characters.")
	}
	if email != "" && !util.ValidateEmail(email) {
		return nil, models.Validationf("Please enter a valid email address.")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, models.Conflictf("Username already taken.")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}

	var emailPtr *string
	if email != "" {
		if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
			return nil, models.Conflictf("Email already registered.")
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
		emailPtr = &email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, emailPtr, hash)
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, models.ErrConflict) {
			return nil, models.Conflictf("Username or email already registered.")
		}
		return nil, err
	}

	log.Printf("INFO: Successful registration - User: %s, ID: %d", user.Username, user.ID)
	return user, nil
}

// Login resolves identifier as a username first, then as an email, and checks
// the password against the stored hash.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return nil, models.Authf(invalidCredentials)
	}

	user, err := s.users.GetUserByUsername(ctx, identifier)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.users.GetUserByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Printf("ERROR: Failed to find user during login - Username/Email: %s", identifier)
			return nil, models.Authf(invalidCredentials)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Printf("ERROR: Invalid password attempt for user %d", user.ID)
		return nil, models.Authf(invalidCredentials)
	}

	log.Printf("INFO: Successful login - User: %s, ID: %d", user.Username, user.ID)
	return user, nil
}

// CurrentUser loads the user behind a session identity.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.Authf("Please log in to continue.")
	}
	return user, err
}
