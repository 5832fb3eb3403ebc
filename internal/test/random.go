package test

import (
	"github.com/JMan003/banking-system-project/internal/domain"
	"github.com/JMan003/banking-system-project/pkg/randompkg"
)

// RandomAccount returns an active account with a random id, owner and balance.
func RandomAccount() domain.Account {
	return domain.Account{
		ID:      randompkg.ID(),
		Owner:   randompkg.Owner(),
		Balance: randompkg.MoneyAmountBetween(1000, 10_000),
		Active:  true,
	}
}
