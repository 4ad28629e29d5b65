package models

import "time"

// Sale is an append-only commission ledger entry. UserID is who gets
// paid, SellerID is who closed the activation, BuyerID is who got
// activated. UserID and SellerID diverge only on the seller's 3rd sale.
type Sale struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SellerID  string    `json:"sellerId"`
	BuyerID   string    `json:"buyerId"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}
