package coin

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
)

func mustMoney(t *testing.T, amount int64) money.Money {
	t.Helper()
	m, err := money.New(decimal.NewFromInt(amount), currency.CurrencyRUB)
	require.NoError(t, err)

	return m
}

func TestNewRejectsNegativeQuantity(t *testing.T) {
	_, err := New(mustMoney(t, 5), -1)

	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestAddCoins(t *testing.T) {
	c, err := New(mustMoney(t, 5), 10)
	require.NoError(t, err)

	require.NoError(t, c.AddCoins(3))
	assert.Equal(t, 13, c.Quantity)

	assert.ErrorIs(t, c.AddCoins(-1), ErrNegativeCount)
	assert.Equal(t, 13, c.Quantity)
}

func TestRemoveCoins(t *testing.T) {
	c, err := New(mustMoney(t, 5), 10)
	require.NoError(t, err)

	require.NoError(t, c.RemoveCoins(4))
	assert.Equal(t, 6, c.Quantity)
}

func TestRemoveCoinsBelowZero(t *testing.T) {
	c, err := New(mustMoney(t, 5), 3)
	require.NoError(t, err)

	err = c.RemoveCoins(4)

	assert.ErrorIs(t, err, ErrInsufficientCoins)
	assert.Equal(t, 3, c.Quantity)
}

func TestSumCoinMap(t *testing.T) {
	total, err := SumCoinMap(map[string]int{"10": 8, "5": 1, "1": 2})

	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(87)))
}

func TestSumCoinMapEmpty(t *testing.T) {
	total, err := SumCoinMap(nil)

	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestSumCoinMapRejectsNegativeCount(t *testing.T) {
	_, err := SumCoinMap(map[string]int{"5": -1})

	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestSumCoinMapRejectsBadDenomination(t *testing.T) {
	_, err := SumCoinMap(map[string]int{"five": 1})

	assert.Error(t, err)
}

func TestChangePlanTotal(t *testing.T) {
	plan := ChangePlan{"10": 1, "5": 1}

	total, err := plan.Total()

	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(15)))
	assert.False(t, plan.IsEmpty())
	assert.True(t, ChangePlan{}.IsEmpty())
}
