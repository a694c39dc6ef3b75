package entity

import "errors"

// 应用级错误分类，handler 层通过 errors.Is 映射为 HTTP 状态码。
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrArchiveFormat      = errors.New("malformed story archive")
	ErrNoContent          = errors.New("story has no content")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)
