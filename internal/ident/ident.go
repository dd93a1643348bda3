// Package ident allocates record identifiers. Organizations, users and
// admins get random 10-digit ids; device records get an id derived from
// their organization and vehicle plate.
package ident

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	minID  = 1_000_000_000
	idSpan = 9_000_000_000

	// MaxAttempts bounds the number of candidates tried before giving up.
	MaxAttempts = 16
)

// ErrExhausted is returned when every candidate id was already taken.
var ErrExhausted = errors.New("identifier space exhausted")

// ExistenceChecker reports whether value is already stored under field in
// the named collection.
type ExistenceChecker interface {
	Exists(ctx context.Context, collection, field, value string) (bool, error)
}

// Allocator hands out random identifiers that are not yet in use.
type Allocator struct {
	checker ExistenceChecker
	next    func() int64
}

// NewAllocator returns an Allocator backed by checker.
func NewAllocator(checker ExistenceChecker) *Allocator {
	return &Allocator{
		checker: checker,
		next:    func() int64 { return rand.Int64N(idSpan) + minID },
	}
}

// RandomTracker returns a 10-digit decimal id not present under field in
// collection.
func (a *Allocator) RandomTracker(ctx context.Context, field, collection string) (string, error) {
	for i := 0; i < MaxAttempts; i++ {
		candidate := strconv.FormatInt(a.next(), 10)
		taken, err := a.checker.Exists(ctx, collection, field, candidate)
		if err != nil {
			return "", fmt.Errorf("checking %s.%s: %w", collection, field, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s.%s after %d attempts: %w", collection, field, MaxAttempts, ErrExhausted)
}

// SanitizeRegNo strips everything except ASCII letters and digits.
func SanitizeRegNo(regNo string) string {
	var b strings.Builder
	b.Grow(len(regNo))
	for _, r := range regNo {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeriveTrackerID builds a device id from the organization's reference
// number and the sanitized vehicle registration number.
func DeriveTrackerID(orgRefNo int64, regNo string) string {
	return strconv.FormatInt(orgRefNo, 10) + SanitizeRegNo(regNo)
}
