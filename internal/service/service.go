// Package service implements the admin operations on organizations, their
// users and their device records.
package service

import (
	"context"
	"errors"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/ident"
	"github.com/ukydev/fleet-admin/internal/notify"
	"github.com/ukydev/fleet-admin/internal/validate"
)

// auditRole is recorded for every request passing the admin gate.
const auditRole = "admin"

// IDAllocator hands out random record ids.
type IDAllocator interface {
	RandomTracker(ctx context.Context, field, collection string) (string, error)
}

// Cipher encrypts stored user passwords.
type Cipher interface {
	Encrypt(plain string) string
	Decrypt(cipherText string) (string, error)
}

// TokenIssuer signs API tokens and checks admin password hashes.
type TokenIssuer interface {
	GenerateToken(subject string, extra map[string]interface{}) (string, error)
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
}

// Auditor records requests and data changes in the action log.
type Auditor interface {
	Record(user, role, endpoint string)
	RecordAction(user, action, collection string)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Organizations db.OrganizationCollection
	Users         db.UserCollection
	Trackers      db.TrackerCollection
	History       db.HistoryCollection
	Admins        db.AdminCollection
	LoginLatest   db.LoginLatestCollection
	Cascade       db.Cascader
	IDs           IDAllocator
	Cipher        Cipher
	Tokens        TokenIssuer
	Audit         Auditor
	Notifier      notify.Publisher
	Validator     *validate.Validator
	Clock         clock.Clock
	Log           logrus.FieldLogger
}

// Service runs admin operations. It is safe for concurrent use.
type Service struct {
	orgs      db.OrganizationCollection
	users     db.UserCollection
	trackers  db.TrackerCollection
	history   db.HistoryCollection
	admins    db.AdminCollection
	logins    db.LoginLatestCollection
	cascade   db.Cascader
	ids       IDAllocator
	cipher    Cipher
	tokens    TokenIssuer
	audit     Auditor
	notifier  notify.Publisher
	validator *validate.Validator
	clock     clock.Clock
	log       logrus.FieldLogger
}

// New creates a Service. A nil Notifier, Validator, Clock or Log is
// replaced by a default.
func New(d Deps) *Service {
	s := &Service{
		orgs:      d.Organizations,
		users:     d.Users,
		trackers:  d.Trackers,
		history:   d.History,
		admins:    d.Admins,
		logins:    d.LoginLatest,
		cascade:   d.Cascade,
		ids:       d.IDs,
		cipher:    d.Cipher,
		tokens:    d.Tokens,
		audit:     d.Audit,
		notifier:  d.Notifier,
		validator: d.Validator,
		clock:     d.Clock,
		log:       d.Log,
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.validator == nil {
		s.validator = validate.New()
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// check validates form and turns failures into a validation error.
func (s *Service) check(form interface{}, code string) error {
	if msgs := s.validator.Struct(form); len(msgs) > 0 {
		return Invalid(code, msgs...)
	}
	return nil
}

// allocate returns a fresh random id for collection.
func (s *Service) allocate(ctx context.Context, collection string) (string, error) {
	id, err := s.ids.RandomTracker(ctx, "tracker", collection)
	if errors.Is(err, ident.ErrExhausted) {
		return "", &Error{Kind: KindFault, Code: CodeIDExhausted, Err: err}
	}
	if err != nil {
		return "", Fault("allocate id", err)
	}
	return id, nil
}

// nowMS is the current time in epoch milliseconds.
func (s *Service) nowMS() int64 {
	return s.clock.Now().UnixMilli()
}

// notFoundOr maps db.ErrNotFound to a coded not-found error and anything
// else to a fault.
func notFoundOr(err error, code, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return NotFound(code)
	}
	return Fault(op, err)
}
