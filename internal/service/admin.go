package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/models"
)

// Login checks an administrator's credentials and issues an API token.
// Accounts carrying a bcrypt hash are checked against it; older accounts
// only have the cipher text of their password.
func (s *Service) Login(ctx context.Context, form LoginForm) (string, error) {
	if msgs := s.validator.Struct(form); len(msgs) > 0 {
		return "", Invalid(CodeLoginValidation, msgs...)
	}

	admin, err := s.admins.FindActiveAdmin(ctx, strings.TrimSpace(form.LoginName))
	if errors.Is(err, db.ErrNotFound) {
		return "", Unauthorized(CodeInvalidKey)
	}
	if err != nil {
		return "", Fault("find admin", err)
	}

	if !s.passwordMatches(admin, form.Password) {
		return "", Unauthorized(CodeInvalidKey)
	}

	token, err := s.tokens.GenerateToken(admin.Tracker, map[string]interface{}{
		auth.ClaimAccountType: string(models.RoleAdmin),
	})
	if err != nil {
		return "", Fault("sign token", err)
	}
	s.log.WithField("userId", admin.Tracker).Info("admin logged in")
	return token, nil
}

func (s *Service) passwordMatches(admin *models.AdminUser, password string) bool {
	if admin.PasswordHash != "" {
		return s.tokens.CheckPassword(password, admin.PasswordHash)
	}
	enc := s.cipher.Encrypt(password)
	return admin.Password != "" && subtle.ConstantTimeCompare([]byte(enc), []byte(admin.Password)) == 1
}

// CreateAdmin inserts an active administrator with both the legacy cipher
// text and a bcrypt hash of password. It returns the new admin's id.
func (s *Service) CreateAdmin(ctx context.Context, loginName, password, name string) (string, error) {
	form := LoginForm{LoginName: loginName, Password: password}
	if msgs := s.validator.Struct(form); len(msgs) > 0 {
		return "", Invalid(CodeLoginValidation, msgs...)
	}
	loginName = strings.TrimSpace(loginName)

	_, err := s.admins.FindActiveAdmin(ctx, loginName)
	switch {
	case err == nil:
		return "", Conflict(CodeLoginNameConflict)
	case !errors.Is(err, db.ErrNotFound):
		return "", Fault("find admin", err)
	}

	id, err := s.allocate(ctx, db.AdminCollectionName)
	if err != nil {
		return "", err
	}
	hash, err := s.tokens.HashPassword(password)
	if err != nil {
		return "", Fault("hash password", err)
	}

	admin := models.AdminUser{
		Tracker:      id,
		Name:         strings.TrimSpace(name),
		LoginName:    loginName,
		Password:     s.cipher.Encrypt(password),
		PasswordHash: hash,
		Status:       models.StatusActive,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.admins.InsertAdmin(ctx, admin); err != nil {
		return "", Fault("insert admin", err)
	}
	return id, nil
}
