package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"talkseed/internal/domain"
)

type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (r *UserRepository) CreateUser(userID, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New().String()
	now := time.Now()

	query := `
		INSERT INTO users (id, user_id, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query, id, userID, string(hash), now, now)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetUserByID(id)
}

// GetUserByID retrieves a user by the opaque account id.
func (r *UserRepository) GetUserByID(id string) (*domain.User, error) {
	query := `
		SELECT id, user_id, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?`

	user := &domain.User{}
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.UserID, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by ID", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByName retrieves a user by the human-chosen login name.
func (r *UserRepository) GetUserByName(userID string) (*domain.User, error) {
	query := `
		SELECT id, user_id, password_hash, created_at, updated_at
		FROM users
		WHERE user_id = ?`

	user := &domain.User{}
	err := r.db.QueryRow(query, userID).Scan(
		&user.ID, &user.UserID, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by name", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// VerifyPassword returns the user when the credentials match. Unknown names
// and wrong passwords are both reported as domain.ErrInvalidCredentials so
// callers cannot probe which accounts exist.
func (r *UserRepository) VerifyPassword(userID, password string) (*domain.User, error) {
	user, err := r.GetUserByName(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user, nil
}
