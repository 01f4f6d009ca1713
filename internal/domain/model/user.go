package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidRole は未知のロール文字列。
var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole は入力文字列を閉じたロール集合に変換する。
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleFarmer:
		return RoleFarmer, nil
	case RoleSeller:
		return RoleSeller, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name"`
	Role         Role      `gorm:"type:varchar(10);not null;default:'farmer'" json:"role"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	IsApproved   bool      `gorm:"not null;default:false" json:"is_approved"`
	Phone        string    `gorm:"type:varchar(15)" json:"phone"`
	Address      string    `gorm:"type:text" json:"address"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// NewUser はユーザー作成時に承認とスタッフ権限を一度だけ決める。
// farmer/adminは即承認、sellerは管理者の承認待ち。
func NewUser(email, passwordHash, name string, role Role, now time.Time) User {
	u := User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch role {
	case RoleFarmer:
		u.IsApproved = true
	case RoleAdmin:
		u.IsApproved = true
		u.IsStaff = true
	case RoleSeller:
		u.IsApproved = false
	}
	return u
}

// Identity はリクエストごとに読み込む認証済みユーザーの情報。
type Identity struct {
	UserID     int64
	Role       Role
	IsStaff    bool
	IsApproved bool
}

func (u User) Identity() Identity {
	return Identity{
		UserID:     u.ID,
		Role:       u.Role,
		IsStaff:    u.IsStaff,
		IsApproved: u.IsApproved,
	}
}

// CanSell は承認済みsellerだけtrue。
func (i Identity) CanSell() bool {
	return i.Role == RoleSeller && i.IsApproved
}
