package models

import "time"

// Plans is the fixed set of purchasable tiers, in USD.
var Plans = []int{15, 37, 99, 187, 349, 987}

// ValidPlan reports whether p is one of the purchasable tiers.
func ValidPlan(p int) bool {
	for _, v := range Plans {
		if v == p {
			return true
		}
	}
	return false
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PasswordHash    string    `json:"passwordHash"`
	Plan            int       `json:"plan"`
	SponsorID       string    `json:"sponsorId,omitempty"` // empty = registered without a sponsor
	Active          bool      `json:"active"`
	Role            string    `json:"role"`
	Level           int       `json:"level"`
	WhatsappNumber  string    `json:"whatsappNumber"`
	LandingVideoURL string    `json:"landingVideoUrl"`
	LandingHeadline string    `json:"landingHeadline"`
	AvatarURL       string    `json:"avatarUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PublicProfile is the subset of User exposed on landing pages and to
// other users (no email, no hash).
type PublicProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Plan            int    `json:"plan"`
	Level           int    `json:"level"`
	WhatsappNumber  string `json:"whatsappNumber"`
	LandingVideoURL string `json:"landingVideoUrl"`
	LandingHeadline string `json:"landingHeadline"`
	AvatarURL       string `json:"avatarUrl"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		Name:            u.Name,
		Plan:            u.Plan,
		Level:           u.Level,
		WhatsappNumber:  u.WhatsappNumber,
		LandingVideoURL: u.LandingVideoURL,
		LandingHeadline: u.LandingHeadline,
		AvatarURL:       u.AvatarURL,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
