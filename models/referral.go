package models

import "time"

const (
	ReferralEventVisit     = "visit"
	ReferralEventVideoView = "video_view"
)

// ReferralEvent is an append-only analytics counter record.
type ReferralEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SponsorID string    `json:"sponsorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReferralStats aggregates the funnel for one sponsor.
type ReferralStats struct {
	Visits        int `json:"visits"`
	VideoViews    int `json:"videoViews"`
	Registrations int `json:"registrations"`
}
