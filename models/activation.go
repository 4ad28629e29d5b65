package models

import "time"

// ActivationRequest marks "I claim to have paid my sponsor". At most one
// live request per (UserID, SponsorID) pair; deleted when the activation
// succeeds.
type ActivationRequest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SponsorID string    `json:"sponsorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivationProof is an append-only evidence record, attachable both at
// notify time and at approve time. Never mutated or deleted.
type ActivationProof struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SponsorID string    `json:"sponsorId"`
	ProofURL  string    `json:"proofUrl,omitempty"`
	ProofNote string    `json:"proofNote,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
