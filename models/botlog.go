package models

import "time"

// BotKindBinary is the only retained bot kind: an educational binary
// options simulation. It never places real orders.
const BotKindBinary = "binary"

// BotLog is one periodic tick of a simulated bot.
type BotLog struct {
	ID        string    `json:"id"`
	Bot       string    `json:"bot"`
	UserID    string    `json:"userId"`
	Symbol    string    `json:"symbol"`
	Direction string    `json:"direction"` // CALL or PUT
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"ts"`
}

// Level is a catalog entry for the gamified user levels.
type Level struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
