package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanTeach reports whether the role may author courses and blog posts.
func (r Role) CanTeach() bool {
	return r == RoleTeacher || r == RoleAdmin
}

type Membership string

const (
	MembershipFree Membership = "FREE"
	MembershipPro  Membership = "PRO"
)

type User struct {
	gorm.Model
	Username     string     `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"size:16;default:USER;not null" json:"role"`
	Membership   Membership `gorm:"size:16;default:FREE;not null" json:"membership"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	FullName     string     `gorm:"size:128" json:"full_name"`
	Bio          string     `gorm:"type:text" json:"bio"`
	AvatarURL    string     `json:"avatar_url"`
}

// PublicProfile is the subset of a user shown to other users.
type PublicProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Role      Role   `json:"role"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}

type LoginHistory struct {
	gorm.Model
	UserID    uint      `gorm:"index" json:"user_id"`
	LoginTime time.Time `gorm:"index" json:"login_time"`
	IP        string    `gorm:"size:64" json:"ip"`
}
