package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glamourpk/glamour/internal/domain"
)

type OrderUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
}

// Create validates the checkout payload, prices every line from the stored
// product (client prices are never trusted) and assigns the order number.
func (uc *OrderUC) Create(ctx context.Context, o *domain.Order) error {
	if err := validateOrder(o); err != nil {
		return err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	var total float64
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.OrderID = o.ID
		if it.ProductID != nil {
			p, err := uc.Products.FindByID(ctx, *it.ProductID)
			if err != nil {
				return domain.Invalid("items", fmt.Sprintf("unknown product %s", it.ProductID))
			}
			it.Title = p.Name
			it.UnitPrice = p.Price
		}
		total += it.UnitPrice * float64(it.Qty)
	}
	o.TotalAmount = total
	o.Status = domain.OrderStatusPending
	o.Payment = domain.PaymentPending

	count, err := uc.Orders.Count(ctx)
	if err != nil {
		return err
	}
	o.Number = fmt.Sprintf("ORD-%d-%d", time.Now().Unix(), count+1)

	return uc.Orders.Save(ctx, o)
}

// Track looks an order up by its public number.
func (uc *OrderUC) Track(ctx context.Context, number string) (*domain.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.Invalid("number", "required")
	}
	return uc.Orders.FindByNumber(ctx, number)
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Orders.List(ctx, f)
}

func (uc *OrderUC) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.Invalid("status", "must be pending, confirmed, shipped, delivered or cancelled")
	}
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = status
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) UpdatePayment(ctx context.Context, id uuid.UUID, payment domain.PaymentStatus) (*domain.Order, error) {
	if !payment.Valid() {
		return nil, domain.Invalid("payment", "must be pending, completed or failed")
	}
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Payment = payment
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkNotified records that the admin notification for an order went out so
// it is never re-sent. No-op when already set.
func (uc *OrderUC) MarkNotified(ctx context.Context, id uuid.UUID) error {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Notified {
		return nil
	}
	o.Notified = true
	return uc.Orders.Save(ctx, o)
}

func (uc *OrderUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Orders.Delete(ctx, id)
}

func validateOrder(o *domain.Order) error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return domain.Invalid("customer_name", "required")
	}
	if strings.TrimSpace(o.CustomerEmail) == "" || !strings.Contains(o.CustomerEmail, "@") {
		return domain.Invalid("customer_email", "valid email required")
	}
	if strings.TrimSpace(o.CustomerPhone) == "" {
		return domain.Invalid("customer_phone", "required")
	}
	if strings.TrimSpace(o.Address) == "" {
		return domain.Invalid("address", "required")
	}
	if strings.TrimSpace(o.City) == "" {
		return domain.Invalid("city", "required")
	}
	if len(o.Items) == 0 {
		return domain.Invalid("items", "at least one item required")
	}
	for _, it := range o.Items {
		if it.Qty < 1 {
			return domain.Invalid("items", "quantity must be at least 1")
		}
		if it.ProductID == nil && strings.TrimSpace(it.Title) == "" {
			return domain.Invalid("items", "item needs a product or a title")
		}
	}
	return nil
}
