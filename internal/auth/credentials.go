package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"echochat/internal/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrAuthFailure       = errors.New("invalid username or password")
	ErrMissingCredential = errors.New("username and password are required")
	ErrPasswordTooLong   = errors.New("password must be at most 72 bytes")
)

// Credentials stores salted bcrypt hashes of user passwords and verifies
// login attempts against them. Plaintext passwords are never persisted.
type Credentials struct {
	db   *gorm.DB
	cost int
}

func NewCredentials(db *gorm.DB) *Credentials {
	return &Credentials{db: db, cost: bcrypt.DefaultCost}
}

// NewCredentialsWithCost is intended for tests, where bcrypt.MinCost keeps
// hashing fast.
func NewCredentialsWithCost(db *gorm.DB, cost int) *Credentials {
	return &Credentials{db: db, cost: cost}
}

func (c *Credentials) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashed), nil
}

func (c *Credentials) Register(ctx context.Context, username, password string) (uint, error) {
	if username == "" || password == "" {
		return 0, ErrMissingCredential
	}

	hashed, err := c.hash(password)
	if err != nil {
		return 0, err
	}

	user := database.User{Username: username, PasswordHash: hashed, CreatedAt: time.Now().UTC()}

	err = c.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		existing, err := database.GetUserByUsername(ctx, txn, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateUsername
		}
		return txn.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateUsername
		}
		slog.Error("error registering user", "username", username, "error", err)
		return 0, fmt.Errorf("error registering user: %w", err)
	}

	slog.Info("registered user", "user_id", user.Id, "username", username)
	return user.Id, nil
}

// Verify returns the id of the user when password matches the stored hash.
// Unknown usernames and wrong passwords both yield ErrAuthFailure.
func (c *Credentials) Verify(ctx context.Context, username, password string) (uint, error) {
	user, err := database.GetUserByUsername(ctx, c.db, username)
	if err != nil {
		slog.Error("error looking up user", "username", username, "error", err)
		return 0, err
	}
	if user == nil {
		return 0, ErrAuthFailure
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, ErrAuthFailure
	}
	return user.Id, nil
}

func (c *Credentials) Username(ctx context.Context, userId uint) (string, error) {
	user, err := database.GetUser(ctx, c.db, userId)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUnauthenticated
	}
	return user.Username, nil
}

func (c *Credentials) ChangePassword(ctx context.Context, userId uint, current, next string) error {
	if next == "" {
		return ErrMissingCredential
	}

	user, err := database.GetUser(ctx, c.db, userId)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrAuthFailure
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrAuthFailure
	}

	hashed, err := c.hash(next)
	if err != nil {
		return err
	}

	if err := c.db.WithContext(ctx).Model(&database.User{Id: userId}).Update("password_hash", hashed).Error; err != nil {
		slog.Error("error updating password", "user_id", userId, "error", err)
		return fmt.Errorf("error updating password: %w", err)
	}

	slog.Info("password changed", "user_id", userId)
	return nil
}
