// Package wager implements two-party coin-flip bets with manual deposit
// acknowledgement and a single random resolution event.
package wager

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pliqo-backend/models"
	"pliqo-backend/monitoring"
	"pliqo-backend/store"
)

const (
	MinAmount = 1
	MaxAmount = 100
)

var (
	ErrInvalidAmount      = errors.New("amount must be between 1 and 100")
	ErrOpponentNotFound   = errors.New("opponent not found")
	ErrSelfWager          = errors.New("cannot bet against yourself")
	ErrNoOpponents        = errors.New("no opponents available")
	ErrBetNotFound        = errors.New("bet not found")
	ErrForbidden          = errors.New("not a participant of this bet")
	ErrDepositsIncomplete = errors.New("both deposits are required")
	ErrAlreadyResolved    = errors.New("bet already started or finished")
)

type Service struct {
	st  store.Store
	log *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{st: st, log: log}
}

// Create opens a bet against a named opponent, resolved by id or by
// unique email. Both deposit flags start false.
func (s *Service) Create(ctx context.Context, creatorID, opponentID, opponentEmail string, amount int) (*models.Bet, error) {
	if amount < MinAmount || amount > MaxAmount {
		return nil, ErrInvalidAmount
	}

	var bet models.Bet
	err := s.st.Update(ctx, func(d *store.Data) error {
		var opponent *models.User
		if opponentID != "" {
			opponent = d.FindUser(opponentID)
		} else {
			opponent = d.FindUserByEmail(opponentEmail)
		}
		if opponent == nil {
			return ErrOpponentNotFound
		}
		if opponent.ID == creatorID {
			return ErrSelfWager
		}
		bet = newBet(creatorID, opponent.ID, amount)
		d.Bets = append(d.Bets, bet)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bet created",
		zap.String("bet_id", bet.ID),
		zap.String("creator_id", bet.CreatorID),
		zap.String("opponent_id", bet.OpponentID),
		zap.Int("amount", bet.Amount))
	return &bet, nil
}

// CreateRandom opens a bet against an opponent drawn uniformly from all
// other users.
func (s *Service) CreateRandom(ctx context.Context, creatorID string, amount int) (*models.Bet, error) {
	if amount < MinAmount || amount > MaxAmount {
		return nil, ErrInvalidAmount
	}

	var bet models.Bet
	err := s.st.Update(ctx, func(d *store.Data) error {
		candidates := []string{}
		for _, u := range d.Users {
			if u.ID != creatorID {
				candidates = append(candidates, u.ID)
			}
		}
		if len(candidates) == 0 {
			return ErrNoOpponents
		}
		idx, err := randomInt(len(candidates))
		if err != nil {
			return err
		}
		bet = newBet(creatorID, candidates[idx], amount)
		d.Bets = append(d.Bets, bet)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("random bet created",
		zap.String("bet_id", bet.ID),
		zap.String("opponent_id", bet.OpponentID),
		zap.Int("amount", bet.Amount))
	return &bet, nil
}

func newBet(creatorID, opponentID string, amount int) models.Bet {
	return models.Bet{
		ID:         uuid.NewString(),
		Amount:     amount,
		CreatorID:  creatorID,
		OpponentID: opponentID,
		Status:     models.BetStatusPending,
		Deposits:   map[string]bool{creatorID: false, opponentID: false},
		ServerSeed: uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
	}
}

// MarkDeposit flags the caller's deposit as received. Re-marking is a
// no-op success.
func (s *Service) MarkDeposit(ctx context.Context, betID, userID string) (*models.Bet, error) {
	var bet models.Bet
	err := s.st.Update(ctx, func(d *store.Data) error {
		b := d.FindBet(betID)
		if b == nil {
			return ErrBetNotFound
		}
		if !b.IsParticipant(userID) {
			return ErrForbidden
		}
		b.Deposits[userID] = true
		bet = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Resolve draws the winner once both deposits are flagged. The draw is
// a fair 50/50 independent of deposit order, caller and amount. The
// running status exists only inside this mutation; a future
// asynchronous draw could park the bet there.
func (s *Service) Resolve(ctx context.Context, betID, userID string) (*models.Bet, error) {
	var bet models.Bet
	err := s.st.Update(ctx, func(d *store.Data) error {
		b := d.FindBet(betID)
		if b == nil {
			return ErrBetNotFound
		}
		if !b.IsParticipant(userID) {
			return ErrForbidden
		}
		if b.Status != models.BetStatusPending {
			return ErrAlreadyResolved
		}
		if !b.BothDeposited() {
			return ErrDepositsIncomplete
		}

		b.Status = models.BetStatusRunning
		coin, err := randomInt(2)
		if err != nil {
			return fmt.Errorf("draw winner: %w", err)
		}
		if coin == 0 {
			b.WinnerID = b.CreatorID
		} else {
			b.WinnerID = b.OpponentID
		}
		b.Status = models.BetStatusCompleted
		b.PrizeAmount = b.Amount * 2
		now := time.Now().UTC()
		b.CompletedAt = &now
		bet = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.BetsResolvedTotal.Inc()
	s.log.Info("bet resolved",
		zap.String("bet_id", bet.ID),
		zap.String("winner_id", bet.WinnerID),
		zap.Int("prize", bet.PrizeAmount))
	return &bet, nil
}

// ConfirmPayout marks the prize as delivered. Terminal metadata only,
// idempotent; authorization (admin) is enforced at the boundary.
func (s *Service) ConfirmPayout(ctx context.Context, betID string) (*models.Bet, error) {
	var bet models.Bet
	err := s.st.Update(ctx, func(d *store.Data) error {
		b := d.FindBet(betID)
		if b == nil {
			return ErrBetNotFound
		}
		if !b.PayoutDelivered {
			b.PayoutDelivered = true
			now := time.Now().UTC()
			b.PayoutAt = &now
		}
		bet = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// BetView is a bet enriched with participant names for listing.
type BetView struct {
	models.Bet
	CreatorName  string `json:"creatorName"`
	OpponentName string `json:"opponentName"`
}

// List returns the caller's bets, or all bets for admins, newest first.
func (s *Service) List(ctx context.Context, callerID string, isAdmin bool) ([]BetView, error) {
	d, err := s.st.Read(ctx)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	for _, u := range d.Users {
		names[u.ID] = u.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "Usuario"
	}

	views := []BetView{}
	for _, b := range d.Bets {
		if !isAdmin && !b.IsParticipant(callerID) {
			continue
		}
		views = append(views, BetView{
			Bet:          b,
			CreatorName:  name(b.CreatorID),
			OpponentName: name(b.OpponentID),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// randomInt returns a uniform value in [0, n) from crypto/rand.
func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
