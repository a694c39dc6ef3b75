package entity

import (
	"fmt"
	"strings"
)

// User 定义作者账号。Password 保存哈希值，Token 仅在登录响应中附带，不会持久化。
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	Salt      string `json:"-"`
	Token     string `json:"token,omitempty"`
}

// Validate checks the fields every stored user must carry.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: user email cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(u.Password) == "" {
		return fmt.Errorf("%w: user password cannot be empty", ErrValidation)
	}
	return nil
}

// DisplayName returns the name printed as booklet author.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return strings.TrimSpace(u.UserName)
}
