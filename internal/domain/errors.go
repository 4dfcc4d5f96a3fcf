package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNotOrderable  = errors.New("product has no orderable variant")
	ErrInvalidHandle = errors.New("handle vacío")
	ErrInvalidLine   = errors.New("merchandise id vacío")
)
