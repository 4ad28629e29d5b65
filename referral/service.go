// Package referral implements the sponsor relationship, the activation
// request/approval workflow and the commission ledger.
package referral

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pliqo-backend/auth"
	"pliqo-backend/models"
	"pliqo-backend/monitoring"
	"pliqo-backend/store"
)

var (
	ErrNoSponsor    = errors.New("user has no sponsor")
	ErrForbidden    = errors.New("not authorized for this user")
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidPlan  = errors.New("unknown plan")
)

// Notifier receives side-channel notifications about the activation
// workflow. Implementations must not block for long.
type Notifier interface {
	ActivationRequested(user, sponsor models.User)
	Activated(user, sponsor models.User)
}

type Service struct {
	st       store.Store
	log      *zap.Logger
	notifier Notifier
}

func New(st store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{st: st, log: log}
}

// WithNotifier sets the optional workflow notifier.
func (s *Service) WithNotifier(n Notifier) {
	s.notifier = n
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	Plan      int
	SponsorID string
}

// Register creates a new inactive user. When a sponsor reference is
// given and resolves, the plan is inherited from the sponsor regardless
// of the requested one.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created models.User
	err = s.st.Update(ctx, func(d *store.Data) error {
		if d.FindUserByEmail(in.Email) != nil {
			return ErrEmailTaken
		}
		plan := in.Plan
		sponsorID := ""
		if in.SponsorID != "" {
			if sponsor := d.FindUser(in.SponsorID); sponsor != nil {
				sponsorID = sponsor.ID
				plan = sponsor.Plan
			}
		}
		if !models.ValidPlan(plan) {
			return ErrInvalidPlan
		}
		created = models.User{
			ID:           uuid.NewString(),
			Name:         in.Name,
			Email:        in.Email,
			Phone:        in.Phone,
			PasswordHash: hash,
			Plan:         plan,
			SponsorID:    sponsorID,
			Active:       false,
			Role:         models.RoleUser,
			Level:        1,
			CreatedAt:    time.Now().UTC(),
		}
		d.Users = append(d.Users, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", created.ID),
		zap.String("sponsor_id", created.SponsorID),
		zap.Int("plan", created.Plan))
	return &created, nil
}

// NotifyPayment records that the user claims to have paid their
// sponsor. Creating the request is idempotent; a proof is appended on
// every call that carries proof fields.
func (s *Service) NotifyPayment(ctx context.Context, userID, proofURL, proofNote string) error {
	var user, sponsor models.User
	var notify bool
	err := s.st.Update(ctx, func(d *store.Data) error {
		u := d.FindUser(userID)
		if u == nil {
			return ErrUserNotFound
		}
		if u.SponsorID == "" {
			return ErrNoSponsor
		}
		sp := d.FindUser(u.SponsorID)

		exists := false
		for _, r := range d.ActivationRequests {
			if r.UserID == u.ID && r.SponsorID == u.SponsorID {
				exists = true
				break
			}
		}
		if !exists {
			d.ActivationRequests = append(d.ActivationRequests, models.ActivationRequest{
				ID:        uuid.NewString(),
				UserID:    u.ID,
				SponsorID: u.SponsorID,
				CreatedAt: time.Now().UTC(),
			})
			notify = true
		}
		if proofURL != "" || proofNote != "" {
			d.ActivationProofs = append(d.ActivationProofs, models.ActivationProof{
				ID:        uuid.NewString(),
				UserID:    u.ID,
				SponsorID: u.SponsorID,
				ProofURL:  proofURL,
				ProofNote: proofNote,
				CreatedAt: time.Now().UTC(),
			})
		}
		user = *u
		if sp != nil {
			sponsor = *sp
		}
		return nil
	})
	if err != nil {
		return err
	}

	if notify && s.notifier != nil && sponsor.ID != "" {
		s.notifier.ActivationRequested(user, sponsor)
	}
	return nil
}

// ProofView is the latest proof shown to the sponsor.
type ProofView struct {
	ProofURL  string    `json:"proofUrl,omitempty"`
	ProofNote string    `json:"proofNote,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// RequestView is one pending activation request enriched with the
// requester's profile.
type RequestView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Plan        int        `json:"plan"`
	Active      bool       `json:"active"`
	RequestedAt time.Time  `json:"requestedAt"`
	RequestID   string     `json:"requestId"`
	LastProof   *ProofView `json:"lastProof,omitempty"`
}

// RequestsForSponsor lists every live activation request addressed to
// the sponsor, each with the requester's most recent proof.
func (s *Service) RequestsForSponsor(ctx context.Context, sponsorID string) ([]RequestView, error) {
	d, err := s.st.Read(ctx)
	if err != nil {
		return nil, err
	}

	views := []RequestView{}
	for _, r := range d.ActivationRequests {
		if r.SponsorID != sponsorID {
			continue
		}
		u := d.FindUser(r.UserID)
		if u == nil {
			continue
		}
		view := RequestView{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Plan:        u.Plan,
			Active:      u.Active,
			RequestedAt: r.CreatedAt,
			RequestID:   r.ID,
		}
		// Latest by createdAt; insertion order breaks ties.
		for _, p := range d.ActivationProofs {
			if p.UserID != r.UserID || p.SponsorID != sponsorID {
				continue
			}
			if view.LastProof == nil || !p.CreatedAt.Before(view.LastProof.CreatedAt) {
				view.LastProof = &ProofView{
					ProofURL:  p.ProofURL,
					ProofNote: p.ProofNote,
					CreatedAt: p.CreatedAt,
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Activate flips the target to active, credits the commission and
// removes the matching request, all in one store mutation. It is
// idempotent per target: an already-active target is a success without
// further side effects.
func (s *Service) Activate(ctx context.Context, sponsorID, targetID, proofURL, proofNote string) (*models.User, error) {
	var target, seller models.User
	var sale *models.Sale
	err := s.st.Update(ctx, func(d *store.Data) error {
		t := d.FindUser(targetID)
		if t == nil || t.SponsorID != sponsorID {
			// The authorization rule is sponsor-only; a missing
			// target is indistinguishable on purpose.
			return ErrForbidden
		}
		if t.Active {
			target = *t
			return nil
		}

		sl := d.FindUser(sponsorID)
		if sl == nil {
			return ErrForbidden
		}

		t.Active = true

		// Commission rule: the seller's 1st and 2nd sales pay the
		// seller, the 3rd pays the seller's own sponsor, every later
		// one pays the seller again. Counted from the full ledger
		// inside this critical section.
		n := 0
		for _, prior := range d.Sales {
			if prior.SellerID == sponsorID {
				n++
			}
		}
		recipient := sponsorID
		if n == 2 && sl.SponsorID != "" {
			recipient = sl.SponsorID
		}
		newSale := models.Sale{
			ID:        uuid.NewString(),
			UserID:    recipient,
			SellerID:  sponsorID,
			BuyerID:   t.ID,
			Amount:    t.Plan,
			CreatedAt: time.Now().UTC(),
		}
		d.Sales = append(d.Sales, newSale)
		sale = &newSale

		if proofURL != "" || proofNote != "" {
			d.ActivationProofs = append(d.ActivationProofs, models.ActivationProof{
				ID:        uuid.NewString(),
				UserID:    t.ID,
				SponsorID: sponsorID,
				ProofURL:  proofURL,
				ProofNote: proofNote,
				CreatedAt: time.Now().UTC(),
			})
		}

		kept := d.ActivationRequests[:0]
		for _, r := range d.ActivationRequests {
			if !(r.UserID == t.ID && r.SponsorID == sponsorID) {
				kept = append(kept, r)
			}
		}
		d.ActivationRequests = kept

		target = *t
		seller = *sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sale != nil {
		monitoring.ActivationsTotal.Inc()
		monitoring.SalesAmountTotal.Add(float64(sale.Amount))
		s.log.Info("user activated",
			zap.String("buyer_id", target.ID),
			zap.String("seller_id", sale.SellerID),
			zap.String("recipient_id", sale.UserID),
			zap.Int("amount", sale.Amount))
		if s.notifier != nil {
			s.notifier.Activated(target, seller)
		}
	}
	return &target, nil
}

// SponsorInfo is what a pending user sees about their sponsor.
type SponsorInfo struct {
	Sponsor *models.PublicProfile   `json:"sponsor"`
	Payment *models.PaymentSettings `json:"payment"`
	Pending bool                    `json:"pending"`
}

// SponsorInfo returns the user's sponsor profile, the sponsor's payment
// details and whether a live activation request exists. Users without a
// sponsor (or with a dangling reference) get the empty result.
func (s *Service) SponsorInfo(ctx context.Context, userID string) (*SponsorInfo, error) {
	d, err := s.st.Read(ctx)
	if err != nil {
		return nil, err
	}
	u := d.FindUser(userID)
	if u == nil {
		return nil, ErrUserNotFound
	}
	if u.SponsorID == "" {
		return &SponsorInfo{}, nil
	}
	sponsor := d.FindUser(u.SponsorID)
	if sponsor == nil {
		return &SponsorInfo{}, nil
	}

	info := &SponsorInfo{Payment: d.FindPayment(sponsor.ID)}
	pub := sponsor.Public()
	info.Sponsor = &pub
	for _, r := range d.ActivationRequests {
		if r.UserID == u.ID && r.SponsorID == sponsor.ID {
			info.Pending = true
			break
		}
	}
	return info, nil
}

// SalesFor lists the ledger entries credited to userID, newest first.
func (s *Service) SalesFor(ctx context.Context, userID string) ([]models.Sale, error) {
	d, err := s.st.Read(ctx)
	if err != nil {
		return nil, err
	}
	sales := []models.Sale{}
	for _, sale := range d.Sales {
		if sale.UserID == userID {
			sales = append(sales, sale)
		}
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

// ReferralView is one not-yet-active referral of a sponsor.
type ReferralView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Plan      int       `json:"plan"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// PendingReferrals lists the sponsor's referrals that are not active yet.
func (s *Service) PendingReferrals(ctx context.Context, sponsorID string) ([]ReferralView, error) {
	d, err := s.st.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := []ReferralView{}
	for _, u := range d.Users {
		if u.SponsorID == sponsorID && !u.Active {
			out = append(out, ReferralView{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Plan:      u.Plan,
				Active:    u.Active,
				CreatedAt: u.CreatedAt,
			})
		}
	}
	return out, nil
}

// TrackEvent appends a referral analytics event (visit or video view).
func (s *Service) TrackEvent(ctx context.Context, eventType, sponsorID string) error {
	return s.st.Update(ctx, func(d *store.Data) error {
		d.ReferralEvents = append(d.ReferralEvents, models.ReferralEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			SponsorID: sponsorID,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// Stats aggregates the referral funnel for one sponsor.
func (s *Service) Stats(ctx context.Context, sponsorID string) (models.ReferralStats, error) {
	d, err := s.st.Read(ctx)
	if err != nil {
		return models.ReferralStats{}, err
	}
	stats := models.ReferralStats{}
	for _, e := range d.ReferralEvents {
		if e.SponsorID != sponsorID {
			continue
		}
		switch e.Type {
		case models.ReferralEventVisit:
			stats.Visits++
		case models.ReferralEventVideoView:
			stats.VideoViews++
		}
	}
	for _, u := range d.Users {
		if u.SponsorID == sponsorID {
			stats.Registrations++
		}
	}
	return stats, nil
}

// DeleteAccount removes the user and every record they own: payment
// settings, bot logs, 2FA enrollment, activation requests on either
// side and sales credited to them. Proofs stay (audit trail), as do
// bets and sales where the user was only the seller or buyer. The
// admin account cannot delete itself.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.st.Update(ctx, func(d *store.Data) error {
		u := d.FindUser(userID)
		if u == nil {
			return ErrUserNotFound
		}
		if u.IsAdmin() {
			return ErrForbidden
		}

		payments := d.PaymentSettings[:0]
		for _, p := range d.PaymentSettings {
			if p.UserID != userID {
				payments = append(payments, p)
			}
		}
		d.PaymentSettings = payments

		logs := d.BotLogs[:0]
		for _, l := range d.BotLogs {
			if l.UserID != userID {
				logs = append(logs, l)
			}
		}
		d.BotLogs = logs

		twofa := d.TwoFA[:0]
		for _, t := range d.TwoFA {
			if t.UserID != userID {
				twofa = append(twofa, t)
			}
		}
		d.TwoFA = twofa

		requests := d.ActivationRequests[:0]
		for _, r := range d.ActivationRequests {
			if r.UserID != userID && r.SponsorID != userID {
				requests = append(requests, r)
			}
		}
		d.ActivationRequests = requests

		sales := d.Sales[:0]
		for _, sale := range d.Sales {
			if sale.UserID != userID {
				sales = append(sales, sale)
			}
		}
		d.Sales = sales

		users := d.Users[:0]
		for _, other := range d.Users {
			if other.ID != userID {
				users = append(users, other)
			}
		}
		d.Users = users
		return nil
	})
}
