// Package store persists the application state as a single document of
// named collections. Every mutation is a serialized read-modify-write,
// which is what keeps multi-collection updates (activation, bet
// resolution) atomic with respect to each other.
package store

import (
	"context"
	"encoding/json"

	"pliqo-backend/models"
)

// Data is the whole persisted document.
type Data struct {
	Users              []models.User              `json:"users"`
	Sales              []models.Sale              `json:"sales"`
	PaymentSettings    []models.PaymentSettings   `json:"paymentSettings"`
	Bets               []models.Bet               `json:"bets"`
	ReferralEvents     []models.ReferralEvent     `json:"referralEvents"`
	ActivationRequests []models.ActivationRequest `json:"activationRequests"`
	ActivationProofs   []models.ActivationProof   `json:"activationProofs"`
	BotLogs            []models.BotLog            `json:"botLogs"`
	Levels             []models.Level             `json:"levels"`
	TwoFA              []models.TwoFA             `json:"twofa"`
}

// Store is the document store contract. Read returns a snapshot the
// caller may inspect freely. Update runs fn on the current document
// under the store's single-writer lock and persists the result; if fn
// returns an error nothing is written.
type Store interface {
	Read(ctx context.Context) (*Data, error)
	Update(ctx context.Context, fn func(*Data) error) error
	Close()
}

// applyDefaults seeds collections that ship with initial content. It
// runs once when a store is opened, not on every read.
func applyDefaults(d *Data) {
	if len(d.Levels) == 0 {
		d.Levels = []models.Level{
			{ID: 1, Name: "Nivel 1", Description: "Inicio"},
			{ID: 2, Name: "Nivel 2", Description: "Intermedio"},
			{ID: 3, Name: "Nivel 3", Description: "Avanzado"},
		}
	}
}

// clone deep-copies the document via JSON so snapshots never alias the
// live document.
func clone(d *Data) (*Data, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	out := &Data{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindUser returns the user with the given id, or nil.
func (d *Data) FindUser(id string) *models.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// FindUserByEmail returns the user with the given email, or nil.
func (d *Data) FindUserByEmail(email string) *models.User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

// FindAdmin returns the admin account, or nil.
func (d *Data) FindAdmin() *models.User {
	for i := range d.Users {
		if d.Users[i].Role == models.RoleAdmin {
			return &d.Users[i]
		}
	}
	return nil
}

// FindPayment returns the payment settings owned by userID, or nil.
func (d *Data) FindPayment(userID string) *models.PaymentSettings {
	for i := range d.PaymentSettings {
		if d.PaymentSettings[i].UserID == userID {
			return &d.PaymentSettings[i]
		}
	}
	return nil
}

// FindBet returns the bet with the given id, or nil.
func (d *Data) FindBet(id string) *models.Bet {
	for i := range d.Bets {
		if d.Bets[i].ID == id {
			return &d.Bets[i]
		}
	}
	return nil
}
