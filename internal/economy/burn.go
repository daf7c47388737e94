package economy

import (
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// BurnTarget names which ledger a burn applies to. Holder and global pools
// are never combined implicitly.
type BurnTarget string

const (
	TargetHolder BurnTarget = "holder"
	TargetGlobal BurnTarget = "global"
)

// Credit adds a non-negative amount to the ready-to-burn counter.
func Credit(pool model.BurnPool, amount decimal.Decimal) model.BurnPool {
	if amount.IsPositive() {
		pool.ReadyToBurn = pool.ReadyToBurn.Add(amount)
	}
	return pool
}

// BurnAll moves everything ready to burn into the burnt total.
func BurnAll(pool model.BurnPool) (model.BurnPool, decimal.Decimal, error) {
	if !pool.ReadyToBurn.IsPositive() {
		return pool, decimal.Zero, ErrNothingToBurn
	}
	burnt := pool.ReadyToBurn
	pool.TotalBurnt = pool.TotalBurnt.Add(burnt)
	pool.ReadyToBurn = decimal.Zero
	return pool, burnt, nil
}
