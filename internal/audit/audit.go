// Package audit records admin actions in the action log without holding
// up the request that caused them.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/models"
)

// DefaultTimeout bounds a single audit write.
const DefaultTimeout = 5 * time.Second

// Logger writes action log entries in the background. Failures are
// logged and dropped.
type Logger struct {
	store   db.ActionLogCollection
	clock   clock.Clock
	log     logrus.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates an audit Logger.
func New(store db.ActionLogCollection, clk clock.Clock, log logrus.FieldLogger) *Logger {
	if clk == nil {
		clk = clock.New()
	}
	return &Logger{store: store, clock: clk, log: log, timeout: DefaultTimeout}
}

// Record logs that user called endpoint with role.
func (l *Logger) Record(user, role, endpoint string) {
	l.write(models.ActionLog{
		User:      user,
		Role:      role,
		Endpoint:  endpoint,
		LogTimeMS: l.clock.Now().UnixMilli(),
	})
}

// RecordAction logs a data change such as an organization delete.
func (l *Logger) RecordAction(user, action, collection string) {
	l.write(models.ActionLog{
		User:       user,
		Action:     action,
		Collection: collection,
		LogTimeMS:  l.clock.Now().UnixMilli(),
	})
}

func (l *Logger) write(entry models.ActionLog) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if err := l.store.InsertActionLog(ctx, entry); err != nil {
			l.log.WithError(err).WithFields(logrus.Fields{
				"user":     entry.User,
				"endpoint": entry.Endpoint,
				"action":   entry.Action,
			}).Warn("audit write failed")
		}
	}()
}

// Wait blocks until every pending write has finished.
func (l *Logger) Wait() {
	l.wg.Wait()
}
