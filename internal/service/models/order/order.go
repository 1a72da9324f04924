package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/orderitem"
)

// Order is a completed purchase: an ordered list of lines plus a grand total
// recomputed whenever a line is added. Orders are immutable once persisted.
type Order struct {
	ID        uuid.UUID             `json:"id"`
	OrderDate time.Time             `json:"orderDate"`
	Total     money.Money           `json:"totalAmount"`
	Items     []orderitem.OrderItem `json:"items"`
}

func New(orderDate time.Time) *Order {
	return &Order{
		ID:        uuid.New(),
		OrderDate: orderDate,
		Total:     money.Zero(currency.Default),
		Items:     []orderitem.OrderItem{},
	}
}

// AddItem appends a line and recomputes the grand total.
func (o *Order) AddItem(productID uuid.UUID, productName string, brandID uuid.UUID, brandName string, quantity int, unitPrice money.Money) error {
	item, err := orderitem.New(productID, productName, brandID, brandName, quantity, unitPrice)
	if err != nil {
		return err
	}

	o.Items = append(o.Items, item)

	return o.recalculateTotal()
}

func (o *Order) recalculateTotal() error {
	total := money.Zero(currency.Default)
	for _, item := range o.Items {
		var err error
		total, err = total.Add(item.TotalPrice)
		if err != nil {
			return err
		}
	}

	o.Total = total

	return nil
}
