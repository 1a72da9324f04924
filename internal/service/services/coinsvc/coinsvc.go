package coinsvc

import (
	"context"

	"github.com/vendlabs/vending-svc/internal/dal/interfaces/icoinrepo"
	"github.com/vendlabs/vending-svc/internal/service/models/coin"
)

// CoinService exposes the machine's float to operators.
type CoinService struct {
	coinRepo icoinrepo.ICoinRepository
}

func NewCoinService(coinRepo icoinrepo.ICoinRepository) *CoinService {
	return &CoinService{
		coinRepo: coinRepo,
	}
}

// GetCoins lists the float descending by denomination.
func (s *CoinService) GetCoins(ctx context.Context) ([]coin.Coin, error) {
	return s.coinRepo.List(ctx)
}
