package economy

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNothingToBurn       = errors.New("nothing to burn")
	ErrNoTicketsAvailable  = errors.New("no tickets available")
	ErrSaleNotLive         = errors.New("sale is not live")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrWalletCapExceeded   = errors.New("wallet cap exceeded")
	ErrEpochCapExceeded    = errors.New("epoch cap exceeded")
	ErrUnknownAsset        = errors.New("unknown asset")
	ErrUnassignedAsset     = errors.New("slot has no assigned asset")
)
