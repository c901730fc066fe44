package utils

import "errors"

var (
	ErrUnknownEncoding = errors.New("unknown text encoding")
)
