// Command adminctl bootstraps administrators and demo data for the admin API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cipher"
	"github.com/ukydev/fleet-admin/internal/config"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/ident"
	"github.com/ukydev/fleet-admin/internal/service"
	"go.uber.org/multierr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()
	cfg.ConfigureLogger(log.StandardLogger())

	root := newRootCmd(cfg, storeAdminCreator(cfg))
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// adminCreator inserts administrator accounts.
type adminCreator func(ctx context.Context, loginName, password, name string) (string, error)

func newRootCmd(cfg *config.Config, create adminCreator) *cobra.Command {
	root := &cobra.Command{
		Use:          "adminctl",
		Short:        "Operator tooling for the fleet admin API",
		SilenceUsage: true,
	}
	root.AddCommand(newCreateAdminCmd(create), newSeedCmd(cfg))
	return root
}

func newCreateAdminCmd(create adminCreator) *cobra.Command {
	var loginName, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Insert an active administrator account",
		RunE:  func(cmd *cobra.Command, _ []string) error {
			return runCreateAdmin(cmd.Context(), create, loginName, password, name, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&loginName, "login", "", "login name of the administrator")
	cmd.Flags().StringVar(&password, "password", "", "password of the administrator")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runCreateAdmin(ctx context.Context, create adminCreator, loginName, password, name string, out io.Writer) error {
	id, err := create(ctx, loginName, password, name)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"admin_id": id, "login": loginName}).Info("Created administrator")
	_, err = fmt.Fprintln(out, id)
	return err
}

// storeAdminCreator connects to the configured database for each call.
func storeAdminCreator(cfg *config.Config) adminCreator {
	return func(ctx context.Context, loginName, password, name string) (id string, err error) {
		store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return "", fmt.Errorf("connect to MongoDB: %w", err)
		}
		defer func() {
			err = multierr.Append(err, store.Close(context.Background()))
		}()

		c, err := cipher.New(cfg.AESKey, cfg.AESIV)
		if err != nil {
			return "", err
		}
		svc := service.New(service.Deps{
			Admins: store.Admins(),
			IDs:    ident.NewAllocator(store),
			Cipher: c,
			Tokens: auth.NewService(cfg.JWTSecret, nil),
			Log:    log.StandardLogger(),
		})
		return svc.CreateAdmin(ctx, loginName, password, name)
	}
}
