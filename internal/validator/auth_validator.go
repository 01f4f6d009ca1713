package validator

import (
	"errors"
	"regexp"
	"strings"

	"agrimarket/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// 電話番号が長すぎる/形式が違う
	ErrInvalidPhone = errors.New("invalid phone")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9\- ]{0,15}$`)
)

const (
	minPasswordLen = 8
	maxNameLen     = 150
	maxPhoneLen    = 15
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(email string, password string, name string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	// 必須チェック
	if email == "" || password == "" || name == "" {
		return ErrInvalidInput
	}
	if !isEmailLike(email) {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return ErrInvalidInput
	}
	if len(name) > maxNameLen {
		return ErrInvalidInput
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(email string, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrInvalidInput
	}
	if !isEmailLike(email) {
		return ErrInvalidInput
	}
	return nil
}

// プロフィール更新。phoneは空でもよい。
func (v *authValidator) ValidateProfile(name string, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return ErrInvalidInput
	}
	return validatePhone(phone)
}

// 数字と + - 空白のみ、15文字まで
func validatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) > maxPhoneLen || !phoneRe.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
