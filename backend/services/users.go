package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=128"`
}

type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=128"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Email       *string `json:"email" validate:"omitempty,email"`
	OldPassword string  `json:"old_password"`
	NewPassword string  `json:"new_password" validate:"omitempty,min=8,max=72"`
}

type UserFilter struct {
	Search string
	Role   models.Role
	Page   utils.Page
}

// Mailer delivers transactional email.
type Mailer interface {
	SendWelcome(ctx context.Context, user models.User) error
}

// AvatarUploader stores an avatar image and returns its public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID uint, r io.Reader) (string, error)
}

type UserService struct {
	db       *gorm.DB
	mailer   Mailer
	uploader AvatarUploader
	log      *utils.Logger
	now      func() time.Time
}

func NewUserService(db *gorm.DB, mailer Mailer, uploader AvatarUploader, log *utils.Logger) *UserService {
	return &UserService{db: db, mailer: mailer, uploader: uploader, log: log, now: time.Now}
}

// Register creates a USER account. The welcome mail is best effort.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.User{}, fmt.Errorf("register: %w", ErrValidation)
	}

	db := s.db.WithContext(ctx)
	var taken int64
	if err := db.Model(&models.User{}).Unscoped().
		Where("LOWER(username) = ? OR email = ?", strings.ToLower(in.Username), in.Email).
		Count(&taken).Error; err != nil {
		return models.User{}, err
	}
	if taken > 0 {
		return models.User{}, fmt.Errorf("username or email: %w", ErrConflict)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Membership:   models.MembershipFree,
		IsActive:     true,
		FullName:     strings.TrimSpace(in.FullName),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, fmt.Errorf("username or email: %w", ErrConflict)
		}
		return models.User{}, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user); err != nil {
			s.log.Warn("welcome mail failed", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// Login checks credentials by username or email and records the login.
func (s *UserService) Login(ctx context.Context, in LoginInput, ip string) (models.User, error) {
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.User{}, fmt.Errorf("login: %w", ErrValidation)
	}
	db := s.db.WithContext(ctx)

	login := strings.TrimSpace(in.Login)
	var user models.User
	err := db.Where("LOWER(username) = ? OR email = ?", strings.ToLower(login), strings.ToLower(login)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if err != nil {
		return models.User{}, err
	}
	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return models.User{}, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if !user.IsActive {
		return models.User{}, fmt.Errorf("account disabled: %w", ErrForbidden)
	}

	entry := models.LoginHistory{UserID: user.ID, LoginTime: s.now().UTC(), IP: ip}
	if err := db.Create(&entry).Error; err != nil {
		s.log.Warn("could not record login", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.User{}, fmt.Errorf("user %d: %w", userID, notFound(err))
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (models.PublicProfile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(username) = ? AND is_active = ?", strings.ToLower(username), true).
		First(&user).Error; err != nil {
		return models.PublicProfile{}, fmt.Errorf("user %q: %w", username, notFound(err))
	}
	return user.Public(), nil
}

// UpdateProfile applies the non-nil fields. Changing the password requires
// the current one.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (models.User, error) {
	if errs := utils.ValidateStruct(in); errs != nil {
		return models.User{}, fmt.Errorf("profile: %w", ErrValidation)
	}
	db := s.db.WithContext(ctx)

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			var taken int64
			if err := db.Model(&models.User{}).Unscoped().
				Where("email = ? AND id <> ?", email, userID).
				Count(&taken).Error; err != nil {
				return models.User{}, err
			}
			if taken > 0 {
				return models.User{}, fmt.Errorf("email: %w", ErrConflict)
			}
			updates["email"] = email
			updates["is_verified"] = false
		}
	}
	if in.NewPassword != "" {
		if in.OldPassword == "" || !utils.CheckPassword(user.PasswordHash, in.OldPassword) {
			return models.User{}, fmt.Errorf("old password does not match: %w", ErrUnauthorized)
		}
		hash, err := utils.HashPassword(in.NewPassword)
		if err != nil {
			return models.User{}, err
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return models.User{}, err
		}
	}
	return s.GetUser(ctx, userID)
}

// SetAvatar uploads the image and stores the resulting URL on the user.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, image io.Reader) (models.User, error) {
	if s.uploader == nil {
		return models.User{}, fmt.Errorf("avatar uploads: %w", ErrUnavailable)
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return models.User{}, err
	}
	url, err := s.uploader.UploadAvatar(ctx, userID, image)
	if err != nil {
		return models.User{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", url).Error; err != nil {
		return models.User{}, err
	}
	return s.GetUser(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(f.Search); search != "" {
		pat := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", pat, pat, pat)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	if err := q.Order("id").Offset(f.Page.Offset()).Limit(f.Page.Size).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) SetRole(ctx context.Context, actor models.Identity, userID uint, role models.Role) (models.User, error) {
	if !role.Valid() {
		return models.User{}, fmt.Errorf("role %q: %w", role, ErrValidation)
	}
	if actor.UserID == userID && role != models.RoleAdmin {
		return models.User{}, fmt.Errorf("admins cannot demote themselves: %w", ErrForbidden)
	}
	return s.updateUser(ctx, userID, "role", role)
}

func (s *UserService) SetActive(ctx context.Context, actor models.Identity, userID uint, active bool) (models.User, error) {
	if actor.UserID == userID && !active {
		return models.User{}, fmt.Errorf("admins cannot deactivate themselves: %w", ErrForbidden)
	}
	return s.updateUser(ctx, userID, "is_active", active)
}

func (s *UserService) updateUser(ctx context.Context, userID uint, column string, value interface{}) (models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Omit(clause.Associations).
		Where("id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		return models.User{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.User{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return s.GetUser(ctx, userID)
}

// LoginActivity counts the user's logins per UTC day over the trailing days.
func (s *UserService) LoginActivity(ctx context.Context, userID uint, days int) (map[string]int, error) {
	if days <= 0 || days > 366 {
		days = 30
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	var times []time.Time
	if err := s.db.WithContext(ctx).Model(&models.LoginHistory{}).
		Where("user_id = ? AND login_time >= ?", userID, since).
		Order("login_time").
		Pluck("login_time", &times).Error; err != nil {
		return nil, err
	}

	activity := make(map[string]int, len(times))
	for _, t := range times {
		activity[t.UTC().Format("2006-01-02")]++
	}
	return activity, nil
}
