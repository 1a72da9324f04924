package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/dal/postgres"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
	"github.com/vendlabs/vending-svc/internal/service/models/currency"
	"github.com/vendlabs/vending-svc/internal/service/models/money"
)

var coinColumns = []string{
	"id",
	"denomination_amount::text",
	"denomination_currency",
	"quantity",
}

// CoinDal represents coin float data access layer model.
type CoinDal struct {
	ID                   uuid.UUID
	DenominationAmount   string
	DenominationCurrency string
	Quantity             int
}

// ToModel converts CoinDal to service layer Coin model.
func (d *CoinDal) ToModel() (*coin.Coin, error) {
	amount, err := decimal.NewFromString(d.DenominationAmount)
	if err != nil {
		return nil, err
	}
	cur, err := currency.ParseCurrency(d.DenominationCurrency)
	if err != nil {
		return nil, err
	}
	denom, err := money.New(amount, cur)
	if err != nil {
		return nil, err
	}

	return &coin.Coin{
		ID:           d.ID,
		Denomination: denom,
		Quantity:     d.Quantity,
	}, nil
}

type PostgresCoinRepository struct {
	conn postgres.Querier
}

func NewPostgresCoinRepository(conn postgres.Querier) *PostgresCoinRepository {
	return &PostgresCoinRepository{
		conn: conn,
	}
}

// List returns the float descending by denomination.
func (r *PostgresCoinRepository) List(ctx context.Context) ([]coin.Coin, error) {
	return r.list(ctx, false)
}

// ListForUpdate returns the float descending by denomination with the rows
// locked for the calling transaction.
func (r *PostgresCoinRepository) ListForUpdate(ctx context.Context) ([]coin.Coin, error) {
	return r.list(ctx, true)
}

func (r *PostgresCoinRepository) list(ctx context.Context, forUpdate bool) ([]coin.Coin, error) {
	builder := sq.Select(coinColumns...).
		From("coins").
		OrderBy("denomination_amount DESC").
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query coins: %w", err)
	}
	defer rows.Close()

	var result []coin.Coin
	for rows.Next() {
		var dal CoinDal
		err := rows.Scan(&dal.ID, &dal.DenominationAmount, &dal.DenominationCurrency, &dal.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coin: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert coin dal to model: %w", err)
		}
		result = append(result, *model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateQuantity persists a single float record's quantity.
func (r *PostgresCoinRepository) UpdateQuantity(ctx context.Context, c *coin.Coin) error {
	query, args, err := sq.Update("coins").
		Set("quantity", c.Quantity).
		Where(sq.Eq{"id": c.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update coin quantity: %w", err)
	}

	return nil
}

// ApplyPayment credits the inserted coins and debits the change coins against
// the locked float rows. Must run inside the placement transaction; the
// surrounding commit/rollback is what makes the two halves one durable unit.
func (r *PostgresCoinRepository) ApplyPayment(ctx context.Context, inserted map[string]int, change coin.ChangePlan) error {
	coins, err := r.ListForUpdate(ctx)
	if err != nil {
		return err
	}

	byDenomination := make(map[string]*coin.Coin, len(coins))
	for i := range coins {
		byDenomination[coins[i].Denomination.Amount.String()] = &coins[i]
	}

	touched := make(map[string]*coin.Coin)

	// Inserted coins of a denomination the float does not track are
	// skipped rather than failing the whole purchase.
	for denom, count := range inserted {
		c, ok := byDenomination[canonicalDenom(denom)]
		if !ok {
			continue
		}
		if err := c.AddCoins(count); err != nil {
			return err
		}
		touched[c.Denomination.Amount.String()] = c
	}

	for denom, count := range change {
		c, ok := byDenomination[canonicalDenom(denom)]
		if !ok {
			return fmt.Errorf("%w: unknown denomination %s", coin.ErrInsufficientCoins, denom)
		}
		if err := c.RemoveCoins(count); err != nil {
			return err
		}
		touched[c.Denomination.Amount.String()] = c
	}

	for _, c := range touched {
		if err := r.UpdateQuantity(ctx, c); err != nil {
			return err
		}
	}

	return nil
}

// canonicalDenom normalizes a denomination key so "5.00" and "5" address the
// same record. Malformed keys pass through and simply match nothing.
func canonicalDenom(denom string) string {
	d, err := decimal.NewFromString(denom)
	if err != nil {
		return denom
	}

	return d.String()
}
