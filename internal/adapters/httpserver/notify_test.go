package httpserver

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glamourpk/glamour/internal/domain"
	"github.com/glamourpk/glamour/internal/usecase"
)

type stubRoundTripper struct{ code int }

func (s stubRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: s.code,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
	}, nil
}

func notifyFixture() (*Server, *memOrders, *domain.Order) {
	mem := &memOrders{byID: map[uuid.UUID]*domain.Order{}}
	o := &domain.Order{ID: uuid.New(), Number: "ORD-1-1", CustomerName: "Ayesha Khan"}
	mem.byID[o.ID] = o
	return &Server{orders: &usecase.OrderUC{Orders: mem}}, mem, o
}

func TestOrderSummary(t *testing.T) {
	o := &domain.Order{
		Number:        "ORD-1-7",
		CustomerName:  "Ayesha Khan",
		CustomerEmail: "ayesha@example.com",
		Address:       "12 Mall Road",
		City:          "Lahore",
		TotalAmount:   3000,
		Items: []domain.OrderItem{
			{Title: "Red Lipstick", Qty: 2, UnitPrice: 1500, Color: "Crimson"},
		},
	}
	got := orderSummary(o)
	assert.Contains(t, got, "Order ORD-1-7")
	assert.Contains(t, got, "Red Lipstick x2")
	assert.Contains(t, got, "Color: Crimson")
	assert.Contains(t, got, "Total: Rs. 3000.00")
}

func TestNotifyClientHasTimeout(t *testing.T) {
	assert.Positive(t, notifyClient.Timeout)
}

func TestSendOrderNotifyMarksOrder(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_IDS", "1001")
	old := notifyClient
	notifyClient = &http.Client{Transport: stubRoundTripper{code: http.StatusOK}}
	t.Cleanup(func() { notifyClient = old })

	s, mem, o := notifyFixture()
	s.sendOrderNotify(o)

	got, err := mem.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.Notified)
}

func TestSendOrderNotifyLeavesUnsentUnmarked(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_IDS", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("SMTP_HOST", "")

	s, mem, o := notifyFixture()
	s.sendOrderNotify(o)

	got, err := mem.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, got.Notified)
}
