package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/validate"
)

// CreateUser adds a login to an active organization and returns its id.
func (s *Service) CreateUser(ctx context.Context, actor string, form CreateUserForm) (string, error) {
	s.audit.Record(actor, auditRole, "createUser")

	if err := s.check(form, ""); err != nil {
		return "", err
	}
	orgID := strings.TrimSpace(form.OrganizationID)
	loginName := strings.TrimSpace(form.LoginName)
	email := strings.TrimSpace(form.Email)

	if taken, err := s.loginNameTaken(ctx, orgID, loginName, ""); err != nil {
		return "", err
	} else if taken {
		return "", Conflict(CodeLoginNameConflict)
	}
	if taken, err := s.emailTaken(ctx, email, ""); err != nil {
		return "", err
	} else if taken {
		return "", Conflict(CodeEmailConflict)
	}

	if _, err := s.orgs.FindOrganization(ctx, orgID, models.StatusActive); err != nil {
		return "", notFoundOr(err, CodeOrgNotFound, "find organization")
	}

	id, err := s.allocate(ctx, db.OrgUserCollectionName)
	if err != nil {
		return "", err
	}

	user := models.OrganizationUser{
		Tracker:             id,
		Name:                strings.TrimSpace(form.Name),
		Email:               email,
		LoginName:           loginName,
		Password:            s.cipher.Encrypt(form.Password),
		Gender:              form.Gender,
		Designation:         strings.TrimSpace(form.Designation),
		Levels:              strings.TrimSpace(form.Levels),
		Status:              models.Status(form.Status),
		DOB:                 parseDOB(form.DOB),
		Phone:               strings.TrimSpace(form.Phone),
		Address:             strings.TrimSpace(form.Address),
		Area:                strings.TrimSpace(form.Area),
		City:                strings.TrimSpace(form.City),
		State:               strings.TrimSpace(form.State),
		Country:             strings.TrimSpace(form.Country),
		CampaignType:        form.CampaignType,
		OrganizationTracker: orgID,
		CreatedAt:           s.clock.Now(),
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		return "", Fault("insert user", err)
	}
	return id, nil
}

// loginNameTaken reports whether another active user of the organization
// already uses loginName. self is ignored.
func (s *Service) loginNameTaken(ctx context.Context, orgID, loginName, self string) (bool, error) {
	u, err := s.users.FindActiveByLoginName(ctx, orgID, loginName)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	case err != nil:
		return false, Fault("find user by login name", err)
	}
	return u.Tracker != self, nil
}

// emailTaken reports whether another active user already uses email.
func (s *Service) emailTaken(ctx context.Context, email, self string) (bool, error) {
	u, err := s.users.FindActiveByEmail(ctx, email)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	case err != nil:
		return false, Fault("find user by email", err)
	}
	return u.Tracker != self, nil
}

func parseDOB(s string) *time.Time {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	t, err := validate.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

func (f UpdateUserForm) patch(c Cipher) models.UserPatch {
	p := models.UserPatch{
		Name:         opt(f.Name),
		Email:        opt(f.Email),
		LoginName:    opt(f.LoginName),
		Gender:       opt(f.Gender),
		Designation:  opt(f.Designation),
		Levels:       opt(f.Levels),
		Status:       optStatus(f.Status),
		DOB:          parseDOB(f.DOB),
		Phone:        opt(f.Phone),
		Address:      opt(f.Address),
		Area:         opt(f.Area),
		City:         opt(f.City),
		State:        opt(f.State),
		Country:      opt(f.Country),
		CampaignType: opt(f.CampaignType),
	}
	if f.Password != "" {
		enc := c.Encrypt(f.Password)
		p.Password = &enc
	}
	return p
}

// UpdateUser applies a sparse update to a user. Login name and email stay
// unique among active users, including when a held user is reactivated.
func (s *Service) UpdateUser(ctx context.Context, actor string, ref UserRef, form UpdateUserForm) (string, error) {
	s.audit.Record(actor, auditRole, "updateUser")

	orgID, userID := strings.TrimSpace(ref.OrganizationID), strings.TrimSpace(ref.UserID)
	if orgID == "" || userID == "" {
		return "", Invalid(CodeMissingUserOrgIDs)
	}
	if err := s.check(form, ""); err != nil {
		return "", err
	}

	patch := form.patch(s.cipher)
	loginName, email := patch.LoginName, patch.Email
	if patch.Status != nil && *patch.Status == models.StatusActive {
		// Bringing a user back from hold re-claims its stored login name
		// and email.
		old, err := s.users.FindUser(ctx, orgID, userID)
		if err != nil {
			return "", notFoundOr(err, CodeRecordNotFound, "find user")
		}
		if old.Status != models.StatusActive {
			if loginName == nil && old.LoginName != "" {
				loginName = &old.LoginName
			}
			if email == nil && old.Email != "" {
				email = &old.Email
			}
		}
	}
	if loginName != nil {
		taken, err := s.loginNameTaken(ctx, orgID, *loginName, userID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", Conflict(CodeLoginNameConflict)
		}
	}
	if email != nil {
		taken, err := s.emailTaken(ctx, *email, userID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", Conflict(CodeEmailConflict)
		}
	}

	set := patch.Set()
	if len(set) == 0 {
		if _, err := s.users.FindUser(ctx, orgID, userID); err != nil {
			return "", notFoundOr(err, CodeRecordNotFound, "find user")
		}
		return userID, nil
	}
	if err := s.users.UpdateUser(ctx, orgID, userID, set); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "update user")
	}
	return userID, nil
}

// DeleteUser puts an active or disabled user on hold.
func (s *Service) DeleteUser(ctx context.Context, actor string, ref UserRef) (string, error) {
	s.audit.Record(actor, auditRole, "deleteUser")

	if msgs := s.validator.Struct(ref); len(msgs) > 0 {
		return "", Invalid(CodeMissingUserOrgIDs, msgs...)
	}
	orgID, userID := strings.TrimSpace(ref.OrganizationID), strings.TrimSpace(ref.UserID)

	if _, err := s.users.FindUser(ctx, orgID, userID, models.StatusActive, models.StatusDisabled); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "find user")
	}
	set := models.UserPatch{Status: optStatus(string(models.StatusHold))}.Set()
	if err := s.users.UpdateUser(ctx, orgID, userID, set); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "hold user")
	}
	return userID, nil
}

// ViewUsers lists an organization's users with their passwords in plain
// text.
func (s *Service) ViewUsers(ctx context.Context, actor string, filter query.UserFilter, extra models.Extra) ([]models.OrganizationUser, error) {
	s.audit.Record(actor, auditRole, "viewUsers")

	if err := s.check(filter, ""); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filter.OrganizationID) == "" {
		return nil, Invalid(CodeBadFilter)
	}

	page := query.Paginate(extra, query.UserPageSize, "cashedDATEobjInsert")
	users, err := s.users.FindUsers(ctx, query.Users(filter), page.FindOptions())
	if err != nil {
		return nil, Fault("find users", err)
	}
	for i := range users {
		plain, err := s.cipher.Decrypt(users[i].Password)
		if err != nil {
			s.log.WithError(err).WithField("userId", users[i].Tracker).Warn("stored password does not decrypt")
			plain = ""
		}
		users[i].Password = plain
	}
	return users, nil
}

// UpdatePassword replaces a user's stored password.
func (s *Service) UpdatePassword(ctx context.Context, actor string, form UpdatePasswordForm) (string, error) {
	s.audit.Record(actor, auditRole, "updatePassword")

	if err := s.check(form, ""); err != nil {
		return "", err
	}
	orgID, userID := strings.TrimSpace(form.OrganizationID), strings.TrimSpace(form.UserID)

	if _, err := s.users.FindUser(ctx, orgID, userID); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "find user")
	}
	enc := s.cipher.Encrypt(form.Password)
	if err := s.users.UpdateUser(ctx, orgID, userID, models.UserPatch{Password: &enc}.Set()); err != nil {
		return "", notFoundOr(err, CodeRecordNotFound, "update password")
	}
	return userID, nil
}
