package domain

import "errors"

var (
	// Common domain errors
	ErrVipNotFound     = errors.New("vip not found in catalog")
	ErrVoucherNotFound = errors.New("voucher not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStoreIO         = errors.New("store i/o failure")
)
