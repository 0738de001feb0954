package repository

import "time"

// AnonymousAccountID keys subscription state before anyone signs in.
const AnonymousAccountID = "local"

// Session represents a signed-in account row. At most one row exists.
type Session struct {
	ID        string
	UserID    string
	Email     *string
	FullName  *string
	CreatedAt time.Time
}

// Subscription represents the tier row for an account.
type Subscription struct {
	AccountID string
	Tier      string
	UpdatedAt time.Time
}

// Device represents a remembered sensor.
type Device struct {
	ID         string
	DeviceUUID uint64
	Name       string
	Firmware   *string
	Battery    *int
	LastSeen   time.Time
}
