package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"talkseed/internal/domain"
)

type CounterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCounterRepository(db *sql.DB, logger *zap.Logger) *CounterRepository {
	return &CounterRepository{
		db:     db,
		logger: logger,
	}
}

// GetCounters returns a user's scan counters, zeroed when no row exists yet.
func (r *CounterRepository) GetCounters(userID string) (*domain.Counters, error) {
	query := `SELECT scan_out_count, scan_in_count FROM counters WHERE user_id = ?`

	counters := &domain.Counters{UserID: userID}
	err := r.db.QueryRow(query, userID).Scan(&counters.ScanOutCount, &counters.ScanInCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return counters, nil
		}
		r.logger.Error("Failed to get counters", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get counters: %w", err)
	}

	return counters, nil
}

// IncrementPair bumps the scanner's out-count and the scanned user's
// in-count in one transaction. Both commit or neither does.
func (r *CounterRepository) IncrementPair(scannerID, scannedID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin counter transaction: %w", err)
	}
	defer tx.Rollback()

	outQuery := `
		INSERT INTO counters (user_id, scan_out_count, scan_in_count)
		VALUES (?, 1, 0)
		ON CONFLICT(user_id) DO UPDATE SET scan_out_count = scan_out_count + 1`

	inQuery := `
		INSERT INTO counters (user_id, scan_out_count, scan_in_count)
		VALUES (?, 0, 1)
		ON CONFLICT(user_id) DO UPDATE SET scan_in_count = scan_in_count + 1`

	if _, err := tx.Exec(outQuery, scannerID); err != nil {
		r.logger.Error("Failed to increment scan-out counter", zap.Error(err), zap.String("user_id", scannerID))
		return fmt.Errorf("failed to increment counters: %w", err)
	}
	if _, err := tx.Exec(inQuery, scannedID); err != nil {
		r.logger.Error("Failed to increment scan-in counter", zap.Error(err), zap.String("user_id", scannedID))
		return fmt.Errorf("failed to increment counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit counter transaction: %w", err)
	}

	return nil
}
