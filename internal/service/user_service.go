package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariane/internal/entity"
	"github.com/ariane/internal/repository"
)

const (
	saltLength        = 5
	saltAlphabet      = "abcdefghijklmnopqrstuvwxyz"
	maxPasswordLength = 64
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID string) (string, error)
}

// UserInput 是注册与资料更新共用的载荷。
type UserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UserService manages author accounts and credentials.
type UserService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

// NewUserService returns a new UserService instance.
func NewUserService(users repository.UserRepository, tokens TokenIssuer, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, tokens: tokens, log: log.Named("users")}
}

// SignUp 创建账号并直接返回带令牌的用户。
func (s *UserService) SignUp(ctx context.Context, input UserInput) (*entity.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, entity.ErrEmailTaken
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(salt, input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		UserName:  strings.TrimSpace(input.UserName),
		Email:     email,
		Password:  hash,
		Salt:      salt,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("user_id", user.ID))
	return s.withToken(user)
}

// SignIn 校验邮箱与密码，成功后返回带令牌的用户。
func (s *UserService) SignIn(ctx context.Context, email, password string) (*entity.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(user.Salt+password)) != nil {
		return nil, entity.ErrInvalidCredentials
	}
	return s.withToken(user)
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.users.Get(ctx, id)
}

// Update 修改资料；Password 为空时保留原密码。
func (s *UserService) Update(ctx context.Context, id string, input UserInput) (*entity.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Email) != "" {
		email, err := normalizeEmail(input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, entity.ErrEmailTaken
			} else if !errors.Is(err, entity.ErrNotFound) {
				return nil, err
			}
		}
		user.Email = email
	}
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.UserName = strings.TrimSpace(input.UserName)

	if input.Password != "" {
		if err := checkPassword(input.Password); err != nil {
			return nil, err
		}
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		hash, err := hashPassword(salt, input.Password)
		if err != nil {
			return nil, err
		}
		user.Salt, user.Password = salt, hash
	}

	return s.users.Update(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *UserService) withToken(user *entity.User) (*entity.User, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	user.Token = token
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", entity.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email is invalid", entity.ErrValidation)
	}
	return email, nil
}

func checkPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password is required", entity.ErrValidation)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password is too long", entity.ErrValidation)
	}
	return nil
}

func newSalt() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(saltAlphabet)))
	for i := 0; i < saltLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		b.WriteByte(saltAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func hashPassword(salt, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(salt+password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
