package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"merchant-api/internal/domain"
)

// PasswordHasher 单向加盐哈希
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type credentials struct {
	MobileNumber string `json:"mobileNumber" validate:"notblank,mobile"`
	Password     string `json:"password" validate:"notblank"`
}

type AccountService struct {
	repo   domain.AccountRepository
	hasher PasswordHasher
	tokens TokenIssuer
	v      *validator.Validate
}

func NewAccountService(repo domain.AccountRepository, hasher PasswordHasher, tokens TokenIssuer) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, tokens: tokens, v: newValidator()}
}

// Register 校验手机号格式后保存哈希后的密码
func (s *AccountService) Register(ctx context.Context, mobileNumber, password string) (*domain.Account, error) {
	if err := validateStruct(s.v, credentials{MobileNumber: mobileNumber, Password: password}); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByMobileNumber(ctx, mobileNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrMobileNumberTaken
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &domain.Account{MobileNumber: mobileNumber, PasswordHash: hashed}
	// 并发注册由唯一索引兜底
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login 用户不存在和密码错误返回同一个错误
func (s *AccountService) Login(ctx context.Context, mobileNumber, password string) (string, error) {
	if mobileNumber == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}
	a, err := s.repo.FindByMobileNumber(ctx, mobileNumber)
	if err != nil {
		return "", err
	}
	if a == nil || !s.hasher.Check(password, a.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(a.MobileNumber)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if tok == "" {
		return "", errors.New("issue token: empty token")
	}
	return tok, nil
}
