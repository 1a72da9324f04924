package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
	"github.com/vendlabs/vending-svc/internal/service/models/orderitem"
)

func rub(t *testing.T, amount int64) money.Money {
	t.Helper()
	m, err := money.New(decimal.NewFromInt(amount), currency.CurrencyRUB)
	require.NoError(t, err)

	return m
}

func TestNewOrderStartsEmpty(t *testing.T) {
	o := New(time.Now().UTC())

	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.Empty(t, o.Items)
	assert.True(t, o.Total.IsZero())
}

func TestAddItemRecalculatesTotal(t *testing.T) {
	o := New(time.Now().UTC())
	brandID := uuid.New()

	require.NoError(t, o.AddItem(uuid.New(), "Coca-Cola", brandID, "Coca-Cola", 2, rub(t, 85)))
	require.NoError(t, o.AddItem(uuid.New(), "Sprite", brandID, "Sprite", 1, rub(t, 70)))

	require.Len(t, o.Items, 2)
	assert.True(t, o.Total.Amount.Equal(decimal.NewFromInt(240)))
	assert.True(t, o.Items[0].TotalPrice.Amount.Equal(decimal.NewFromInt(170)))
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	o := New(time.Now().UTC())

	err := o.AddItem(uuid.New(), "Coca-Cola", uuid.New(), "Coca-Cola", 0, rub(t, 85))

	assert.ErrorIs(t, err, orderitem.ErrInvalidQuantity)
	assert.Empty(t, o.Items)
	assert.True(t, o.Total.IsZero())
}
