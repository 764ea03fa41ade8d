package service

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("username already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)
