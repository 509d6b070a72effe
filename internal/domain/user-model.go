package domain

import "time"

// User is an account record. ID is the opaque identity carried in session
// tickets and QR codes; UserID is the human-chosen login name.
type User struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Counters tracks how many times a user scanned others and was scanned.
// Both values only ever grow.
type Counters struct {
	UserID       string `json:"user_id"`
	ScanOutCount int64  `json:"scan_out"`
	ScanInCount  int64  `json:"scan_in"`
}

// SignupRequest is the signup API input.
type SignupRequest struct {
	UserID   string `json:"user_id" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the login API input.
type LoginRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ScanRequest carries the scanned party's opaque id read from their QR code.
type ScanRequest struct {
	ScannedSID string `json:"scanned_sid" validate:"required"`
}
