package referral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pliqo-backend/models"
	"pliqo-backend/store"
)

func newService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return New(st, nil), st
}

func register(t *testing.T, svc *Service, name string, plan int, sponsorID string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name:      name,
		Email:     name + "@test.local",
		Password:  "secret123",
		Plan:      plan,
		SponsorID: sponsorID,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterInheritsSponsorPlan(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a := register(t, svc, "alice", 99, "")
	require.Equal(t, 99, a.Plan)
	require.False(t, a.Active)

	// B asks for 15 but inherits A's 99.
	b, err := svc.Register(ctx, RegisterInput{
		Name:      "bob",
		Email:     "bob@test.local",
		Password:  "secret123",
		Plan:      15,
		SponsorID: a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 99, b.Plan)
	assert.Equal(t, a.ID, b.SponsorID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "x", Email: "x@test.local", Password: "secret123", Plan: 42,
	})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	register(t, svc, "alice", 99, "")
	_, err = svc.Register(ctx, RegisterInput{
		Name: "other", Email: "alice@test.local", Password: "secret123", Plan: 99,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDanglingSponsorFallsBackToRequestedPlan(t *testing.T) {
	svc, _ := newService(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "solo", Email: "solo@test.local", Password: "secret123",
		Plan: 37, SponsorID: "no-such-user",
	})
	require.NoError(t, err)
	assert.Equal(t, 37, u.Plan)
	assert.Empty(t, u.SponsorID)
}

func TestNotifyPaymentRequiresSponsor(t *testing.T) {
	svc, _ := newService(t)
	a := register(t, svc, "alice", 99, "")

	err := svc.NotifyPayment(context.Background(), a.ID, "", "")
	assert.ErrorIs(t, err, ErrNoSponsor)
}

func TestNotifyPaymentIdempotentRequestAppendsProofs(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)

	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "http://proof/1", ""))
	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "", "paid via paypal"))
	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "", ""))

	d, err := st.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, d.ActivationRequests, 1, "repeated notifies must not duplicate the request")
	assert.Len(t, d.ActivationProofs, 2, "each call with proof fields appends a proof")
}

func TestRequestsForSponsorEnrichment(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)

	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "http://proof/old", ""))
	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "http://proof/new", ""))

	views, err := svc.RequestsForSponsor(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, b.ID, views[0].ID)
	assert.Equal(t, "bob", views[0].Name)
	require.NotNil(t, views[0].LastProof)
	assert.Equal(t, "http://proof/new", views[0].LastProof.ProofURL)
}

func TestActivateAuthorization(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)
	mallory := register(t, svc, "mallory", 99, "")

	_, err := svc.Activate(ctx, mallory.ID, b.ID, "", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Activate(ctx, a.ID, "no-such-user", "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestActivateHappyPath(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)
	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "", ""))

	updated, err := svc.Activate(ctx, a.ID, b.ID, "", "")
	require.NoError(t, err)
	assert.True(t, updated.Active)

	d, err := st.Read(ctx)
	require.NoError(t, err)
	require.Len(t, d.Sales, 1)
	sale := d.Sales[0]
	assert.Equal(t, a.ID, sale.UserID)
	assert.Equal(t, a.ID, sale.SellerID)
	assert.Equal(t, b.ID, sale.BuyerID)
	assert.Equal(t, 99, sale.Amount)
	assert.Empty(t, d.ActivationRequests, "matching request removed")
}

func TestActivateIdempotentPerTarget(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)

	_, err := svc.Activate(ctx, a.ID, b.ID, "", "")
	require.NoError(t, err)
	again, err := svc.Activate(ctx, a.ID, b.ID, "", "")
	require.NoError(t, err, "second activation is a success without side effects")
	assert.True(t, again.Active)

	d, err := st.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Sales, 1, "no duplicate sale")
}

func TestCommissionThirdSalePaysSellersSponsor(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	s2 := register(t, svc, "grand", 99, "")
	s := register(t, svc, "seller", 99, s2.ID)

	var buyers []*models.User
	for _, name := range []string{"t1", "t2", "t3", "t4", "t5"} {
		buyers = append(buyers, register(t, svc, name, 99, s.ID))
	}
	for _, b := range buyers {
		_, err := svc.Activate(ctx, s.ID, b.ID, "", "")
		require.NoError(t, err)
	}

	d, err := st.Read(ctx)
	require.NoError(t, err)
	require.Len(t, d.Sales, 5)
	recipients := make([]string, 0, 5)
	for _, sale := range d.Sales {
		assert.Equal(t, s.ID, sale.SellerID)
		recipients = append(recipients, sale.UserID)
	}
	assert.Equal(t, []string{s.ID, s.ID, s2.ID, s.ID, s.ID}, recipients,
		"sales 1,2,4,5 pay the seller; sale 3 pays the seller's sponsor")
}

func TestCommissionThirdSaleWithoutSponsorPaysSeller(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	s := register(t, svc, "orphan-seller", 99, "")
	for _, name := range []string{"t1", "t2", "t3"} {
		b := register(t, svc, name, 99, s.ID)
		_, err := svc.Activate(ctx, s.ID, b.ID, "", "")
		require.NoError(t, err)
	}

	d, err := st.Read(ctx)
	require.NoError(t, err)
	require.Len(t, d.Sales, 3)
	for _, sale := range d.Sales {
		assert.Equal(t, s.ID, sale.UserID)
	}
}

func TestSponsorInfo(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)

	info, err := svc.SponsorInfo(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, info.Sponsor, "no sponsor result for sponsorless user")
	assert.False(t, info.Pending)

	info, err = svc.SponsorInfo(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, info.Sponsor)
	assert.Equal(t, a.ID, info.Sponsor.ID)
	assert.False(t, info.Pending)

	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "", ""))
	info, err = svc.SponsorInfo(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, info.Pending)
}

func TestSalesForNewestFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	s := register(t, svc, "seller", 99, "")
	b1 := register(t, svc, "b1", 99, s.ID)
	b2 := register(t, svc, "b2", 99, s.ID)
	_, err := svc.Activate(ctx, s.ID, b1.ID, "", "")
	require.NoError(t, err)
	_, err = svc.Activate(ctx, s.ID, b2.ID, "", "")
	require.NoError(t, err)

	sales, err := svc.SalesFor(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.False(t, sales[0].CreatedAt.Before(sales[1].CreatedAt))
}

func TestStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	register(t, svc, "bob", 99, a.ID)

	require.NoError(t, svc.TrackEvent(ctx, models.ReferralEventVisit, a.ID))
	require.NoError(t, svc.TrackEvent(ctx, models.ReferralEventVisit, a.ID))
	require.NoError(t, svc.TrackEvent(ctx, models.ReferralEventVideoView, a.ID))
	require.NoError(t, svc.TrackEvent(ctx, models.ReferralEventVisit, "someone-else"))

	stats, err := svc.Stats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralStats{Visits: 2, VideoViews: 1, Registrations: 1}, stats)
}

func TestDeleteAccountCascade(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	a := register(t, svc, "alice", 99, "")
	b := register(t, svc, "bob", 99, a.ID)
	require.NoError(t, svc.NotifyPayment(ctx, b.ID, "", ""))

	// Give bob a sale credited to him.
	c := register(t, svc, "carol", 99, b.ID)
	_, err := svc.Activate(ctx, b.ID, c.ID, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, b.ID))

	d, err := st.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, d.FindUser(b.ID))
	for _, r := range d.ActivationRequests {
		assert.NotEqual(t, b.ID, r.UserID)
		assert.NotEqual(t, b.ID, r.SponsorID)
	}
	for _, sale := range d.Sales {
		assert.NotEqual(t, b.ID, sale.UserID)
	}
}

func TestDeleteAccountProtectsAdmin(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(d *store.Data) error {
		d.Users = append(d.Users, models.User{
			ID: "admin-1", Name: "Admin", Email: "admin@test.local",
			Role: models.RoleAdmin, Plan: 987, Active: true,
		})
		return nil
	}))

	err := svc.DeleteAccount(ctx, "admin-1")
	assert.ErrorIs(t, err, ErrForbidden)
}
