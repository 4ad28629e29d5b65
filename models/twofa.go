package models

import "time"

// TwoFA stores a user's TOTP enrollment. The secret exists from setup
// time but codes are only enforced at login once Enabled is true.
type TwoFA struct {
	UserID    string    `json:"userId"`
	Secret    string    `json:"secret"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
}
