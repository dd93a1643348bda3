package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/audit"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cipher"
	"github.com/ukydev/fleet-admin/internal/config"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/ident"
	"github.com/ukydev/fleet-admin/internal/metrics"
	mw "github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/notify"
	"github.com/ukydev/fleet-admin/internal/service"
	"github.com/ukydev/fleet-admin/internal/validate"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger := log.StandardLogger()
	cfg.ConfigureLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("admin API stopped")
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	if cfg.UsesDefaultSecrets() {
		logger.Warn("JWT_SECRET, AES_KEY or AES_IV is unset; using development defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := db.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	logger.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	if cfg.EnsureIndexes {
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("Failed to ensure indexes")
		}
	}

	c, err := cipher.New(cfg.AESKey, cfg.AESIV)
	if err != nil {
		return multierr.Append(err, store.Close(context.Background()))
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	notifier := newNotifier(cfg, m, logger)
	auditor := audit.New(store.ActionLogs(), clock.New(), logger)
	tokens := auth.NewService(cfg.JWTSecret, clock.New())

	svc := service.New(service.Deps{
		Organizations: store.Organizations(),
		Users:         store.Users(),
		Trackers:      store.Trackers(),
		History:       store.History(),
		Admins:        store.Admins(),
		LoginLatest:   store.LoginLatest(),
		Cascade:       store.Cascade(),
		IDs:           ident.NewAllocator(store),
		Cipher:        c,
		Tokens:        tokens,
		Audit:         auditor,
		Notifier:      notifier,
		Validator:     validate.New(),
		Log:           logger,
	})

	srv := newHTTPServer(cfg.Port, newRouter(cfg, svc, auditor, tokens, store, m, logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	auditor.Wait()
	notifier.Close()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return multierr.Append(err, store.Close(closeCtx))
}

// newRouter wires the HTTP surface around ops.
func newRouter(cfg *config.Config, ops handlers.Operations, auditor handlers.Auditor, tokens mw.TokenValidator, store handlers.Pinger, m *metrics.Metrics, logger log.FieldLogger) http.Handler {
	return handlers.NewRouter(handlers.RouterConfig{
		Admin:          handlers.NewAdminHandler(ops, auditor, cfg.StoreTimeout, logger),
		Gate:           mw.NewAuthMiddleware(tokens, m, logger),
		Limiter:        mw.NewRateLimitMiddleware(nil),
		LoginRateLimit: cfg.LoginRateLimit,
		LoginWindow:    time.Minute,
		CORSOrigins:    cfg.CORSOrigins,
		TrustProxy:     cfg.TrustProxy,
		Store:          store,
		Instrument:     m.Middleware,
		Metrics:        m.Handler(),
		Log:            logger,
	})
}

// newNotifier connects to the configured broker. Without a broker, or when
// the broker cannot be reached, events are dropped.
func newNotifier(cfg *config.Config, observer notify.Observer, logger log.FieldLogger) notify.Publisher {
	if cfg.MQTTBroker == "" {
		logger.Info("MQTT_BROKER not set; change notifications disabled")
		return notify.Nop{}
	}
	p, err := notify.NewMQTT(notify.Config{
		Broker:      cfg.MQTTBroker,
		ClientID:    cfg.MQTTClientID,
		TopicPrefix: cfg.MQTTTopicPrefix,
	}, logger, observer)
	if err != nil {
		logger.WithError(err).Warn("Change notifications disabled")
		return notify.Nop{}
	}
	return p
}

func newHTTPServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
