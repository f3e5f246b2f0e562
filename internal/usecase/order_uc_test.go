package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glamourpk/glamour/internal/domain"
)

type fakeOrderRepo struct {
	byID map[uuid.UUID]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{byID: map[uuid.UUID]*domain.Order{}}
}

func (f *fakeOrderRepo) Save(_ context.Context, o *domain.Order) error {
	cp := *o
	f.byID[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*domain.Order, error) {
	for _, o := range f.byID {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrderRepo) List(_ context.Context, _ domain.OrderFilter) ([]domain.Order, int64, error) {
	out := make([]domain.Order, 0, len(f.byID))
	for _, o := range f.byID {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func orderFixture(products *fakeProductRepo) (*OrderUC, *domain.Product) {
	puc := newUC(products, nil)
	p := draft("Red Lipstick")
	_ = puc.Create(context.Background(), p)
	return &OrderUC{Orders: newFakeOrderRepo(), Products: products}, p
}

func checkout(p *domain.Product) *domain.Order {
	return &domain.Order{
		CustomerName:  "Ayesha Khan",
		CustomerEmail: "Ayesha@Example.com",
		CustomerPhone: "+92 300 1234567",
		Address:       "12 Mall Road",
		City:          "Lahore",
		PostalCode:    "54000",
		Items:         []domain.OrderItem{{ProductID: &p.ID, Qty: 2}},
	}
}

func TestOrderCreate(t *testing.T) {
	uc, p := orderFixture(newFakeRepo())

	o := checkout(p)
	require.NoError(t, uc.Create(context.Background(), o))

	assert.True(t, strings.HasPrefix(o.Number, "ORD-"), "number %q", o.Number)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, domain.PaymentPending, o.Payment)
	// prices come from the stored product, not the client
	assert.Equal(t, p.Price, o.Items[0].UnitPrice)
	assert.Equal(t, p.Name, o.Items[0].Title)
	assert.Equal(t, p.Price*2, o.TotalAmount)
}

func TestOrderCreateRejectsBadPayloads(t *testing.T) {
	uc, p := orderFixture(newFakeRepo())
	ctx := context.Background()

	o := checkout(p)
	o.CustomerName = ""
	assert.True(t, domain.IsValidation(uc.Create(ctx, o)), "missing name")

	o = checkout(p)
	o.CustomerEmail = "not-an-email"
	assert.True(t, domain.IsValidation(uc.Create(ctx, o)), "bad email")

	o = checkout(p)
	o.Items = nil
	assert.True(t, domain.IsValidation(uc.Create(ctx, o)), "no items")

	o = checkout(p)
	o.Items[0].Qty = 0
	assert.True(t, domain.IsValidation(uc.Create(ctx, o)), "zero qty")
}

func TestOrderCreateUnknownProduct(t *testing.T) {
	uc, p := orderFixture(newFakeRepo())
	o := checkout(p)
	bogus := uuid.New()
	o.Items[0].ProductID = &bogus
	assert.True(t, domain.IsValidation(uc.Create(context.Background(), o)))
}

func TestOrderTrack(t *testing.T) {
	uc, p := orderFixture(newFakeRepo())
	o := checkout(p)
	require.NoError(t, uc.Create(context.Background(), o))

	got, err := uc.Track(context.Background(), o.Number)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = uc.Track(context.Background(), "ORD-0-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Track(context.Background(), "  ")
	assert.True(t, domain.IsValidation(err))
}

func TestOrderMarkNotified(t *testing.T) {
	uc, p := orderFixture(newFakeRepo())
	o := checkout(p)
	require.NoError(t, uc.Create(context.Background(), o))
	assert.False(t, o.Notified)

	require.NoError(t, uc.MarkNotified(context.Background(), o.ID))
	got, err := uc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.Notified)

	// idempotent on an already-notified order
	require.NoError(t, uc.MarkNotified(context.Background(), o.ID))

	assert.ErrorIs(t, uc.MarkNotified(context.Background(), uuid.New()), domain.ErrNotFound)
}

func TestOrderStatusTransitions(t *testing.T) {
	uc, p := orderFixture(newFakeRepo())
	o := checkout(p)
	require.NoError(t, uc.Create(context.Background(), o))

	got, err := uc.UpdateStatus(context.Background(), o.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)

	_, err = uc.UpdateStatus(context.Background(), o.ID, "teleported")
	assert.True(t, domain.IsValidation(err))

	got, err = uc.UpdatePayment(context.Background(), o.ID, domain.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, got.Payment)

	_, err = uc.UpdatePayment(context.Background(), o.ID, "iou")
	assert.True(t, domain.IsValidation(err))
}
