package models

import "time"

// Bet lifecycle. Running is transitional: it is set and immediately
// resolved within the same mutation, so it is never observable at rest.
const (
	BetStatusPending   = "pending"
	BetStatusRunning   = "running"
	BetStatusCompleted = "completed"
)

// Bet is a two-party coin-flip wager with manual deposit acknowledgement.
// Deposits always has exactly two keys: CreatorID and OpponentID.
type Bet struct {
	ID              string          `json:"id"`
	Amount          int             `json:"amount"`
	CreatorID       string          `json:"creatorId"`
	OpponentID      string          `json:"opponentId"`
	Status          string          `json:"status"`
	Deposits        map[string]bool `json:"deposits"`
	WinnerID        string          `json:"winnerId,omitempty"`
	PrizeAmount     int             `json:"prizeAmount,omitempty"`
	PayoutDelivered bool            `json:"payoutDelivered"`
	ServerSeed      string          `json:"serverSeed"`
	CreatedAt       time.Time       `json:"createdAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	PayoutAt        *time.Time      `json:"payoutAt,omitempty"`
}

// IsParticipant reports whether userID is one of the two parties.
func (b *Bet) IsParticipant(userID string) bool {
	return userID == b.CreatorID || userID == b.OpponentID
}

// BothDeposited reports whether both parties flagged their deposit.
func (b *Bet) BothDeposited() bool {
	return b.Deposits[b.CreatorID] && b.Deposits[b.OpponentID]
}
