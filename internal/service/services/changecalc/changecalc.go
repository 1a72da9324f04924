package changecalc

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
)

// ErrInfeasibleChange means the requested amount cannot be assembled from the
// current float. It is a business outcome, not a programming fault.
var ErrInfeasibleChange = errors.New("cannot make exact change with available coins")

// minorUnit is the smallest currency subdivision. A residual at or below it
// after per-step rounding is treated as zero to absorb decimal noise.
var minorUnit = decimal.New(1, -2)

// Calculator decides change feasibility and produces dispensing plans.
//
// Policy: a single greedy descending pass. Feasibility is defined as "what
// the greedy pass achieves" — with contrived denomination sets the pass can
// miss a combination that skipping a large coin would have enabled, and that
// miss is accepted behavior.
type Calculator struct{}

func New() *Calculator {
	return &Calculator{}
}

// CanMakeChange reports whether CalculateChange would succeed for amount
// against the given float snapshot.
func (c *Calculator) CanMakeChange(coins []coin.Coin, amount decimal.Decimal) bool {
	_, err := c.CalculateChange(coins, amount)
	return err == nil
}

// CalculateChange produces a denomination→count plan totaling amount exactly.
// The snapshot is not mutated. A zero amount yields an empty plan.
func (c *Calculator) CalculateChange(coins []coin.Coin, amount decimal.Decimal) (coin.ChangePlan, error) {
	plan := coin.ChangePlan{}
	if amount.IsZero() {
		return plan, nil
	}

	usable := make([]coin.Coin, 0, len(coins))
	for _, cn := range coins {
		if cn.Quantity > 0 && cn.Denomination.Amount.LessThanOrEqual(amount) {
			usable = append(usable, cn)
		}
	}
	sort.Slice(usable, func(i, j int) bool {
		return usable[i].Denomination.Amount.GreaterThan(usable[j].Denomination.Amount)
	})

	remaining := amount
	for _, cn := range usable {
		denom := cn.Denomination.Amount
		maxFit := int(remaining.Div(denom).IntPart())
		count := min(maxFit, cn.Quantity)
		if count <= 0 {
			continue
		}

		plan[denom.String()] = count
		remaining = remaining.Sub(denom.Mul(decimal.NewFromInt(int64(count)))).Round(2)
		if remaining.IsZero() {
			break
		}
	}

	if remaining.GreaterThan(minorUnit) {
		return nil, ErrInfeasibleChange
	}

	return plan, nil
}
