package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"talkseed/internal/domain"
	"talkseed/internal/profileshape"
)

type ProfileRepository struct {
	db       *sql.DB
	logger   *zap.Logger
	maxBytes int
}

func NewProfileRepository(db *sql.DB, logger *zap.Logger, maxBytes int) *ProfileRepository {
	return &ProfileRepository{
		db:       db,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// GetPacked returns the stored packed profile for a user, plus whether a row
// exists at all. A missing profile is an empty profile, not an error; stale
// blobs that no longer parse are likewise treated as empty.
func (r *ProfileRepository) GetPacked(userID string) (domain.PackedProfile, bool, error) {
	query := `SELECT profile_json FROM profiles WHERE user_id = ?`

	var raw string
	err := r.db.QueryRow(query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PackedProfile{}, false, nil
		}
		r.logger.Error("Failed to get profile", zap.Error(err), zap.String("user_id", userID))
		return nil, false, fmt.Errorf("failed to get profile: %w", err)
	}

	return profileshape.DecodePacked([]byte(raw)), true, nil
}

// Upsert persists the packed profile, enforcing the serialized size ceiling.
func (r *ProfileRepository) Upsert(userID string, packed domain.PackedProfile) error {
	data, err := json.Marshal(packed)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	if len(data) > r.maxBytes {
		return domain.ErrProfileTooLarge
	}

	query := `
		INSERT INTO profiles (user_id, profile_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			profile_json = excluded.profile_json,
			updated_at = excluded.updated_at`

	if _, err := r.db.Exec(query, userID, string(data), time.Now()); err != nil {
		r.logger.Error("Failed to upsert profile", zap.Error(err), zap.String("user_id", userID))
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
