package coin

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ChangePlan maps a denomination face value (canonical decimal string, e.g.
// "5" or "0.5") to the count of coins to dispense.
type ChangePlan map[string]int

func (p ChangePlan) IsEmpty() bool {
	return len(p) == 0
}

// Total is the weighted sum of the plan. A plan produced for an amount must
// total that amount exactly.
func (p ChangePlan) Total() (decimal.Decimal, error) {
	return SumCoinMap(p)
}

// SumCoinMap sums a denomination→count multiset. The same representation is
// used for inserted coins and for change plans.
func SumCoinMap(coins map[string]int) (decimal.Decimal, error) {
	total := decimal.Zero
	for denom, count := range coins {
		face, err := decimal.NewFromString(denom)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid denomination %q: %w", denom, err)
		}
		if count < 0 {
			return decimal.Zero, fmt.Errorf("%w: denomination %s count %d", ErrNegativeCount, denom, count)
		}
		total = total.Add(face.Mul(decimal.NewFromInt(int64(count))))
	}

	return total, nil
}
