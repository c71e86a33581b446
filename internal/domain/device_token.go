package domain

import "time"

// DeviceToken is a push registration for one user's device.
type DeviceToken struct {
	ID          string
	UserID      string
	Token       string
	DeviceType  string
	LastUpdated time.Time
}
