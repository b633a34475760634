package user

import "errors"

var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrEmployeeIDRequired      = errors.New("employee_id claim is missing or invalid")
	ErrUserIDRequired          = errors.New("user_id claim is missing or invalid")
	ErrInvalidRole             = errors.New("role claim is missing or invalid")
)

var ErrInvalidToken = errors.New("invalid or expired access token")
