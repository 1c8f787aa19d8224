package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt/internal/config"
	"github.com/prettyserver/passcrypt/internal/keyserver"
	"github.com/prettyserver/passcrypt/internal/keystore"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the key and login server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := a.logger.Logger
			store, err := keystore.LoadOrCreate(a.cfg.Server.KeyDir, keystore.WithLogger(logger))
			if err != nil {
				return err
			}

			users := keyserver.NewUsers(serverUsers(a.cfg.Server.Users)...)
			if users.Len() == 0 {
				logger.Warn().Msg("no users configured, every login will fail")
			}

			if a.loader.ConfigFile() != "" {
				a.loader.Watch(func(cfg *config.Config) {
					users.Replace(serverUsers(cfg.Server.Users)...)
					logger.Info().Int("users", users.Len()).Msg("reloaded users")
				}, func(err error) {
					logger.Error().Err(err).Msg("config reload failed, keeping previous users")
				})
			}

			return keyserver.New(store, users, logger).ListenAndServe(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("key-dir", "", "directory holding the server key pair")
	return cmd
}

func serverUsers(in []config.User) []keyserver.User {
	out := make([]keyserver.User, 0, len(in))
	for _, u := range in {
		out = append(out, keyserver.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			TOTPSecret:   u.TOTPSecret,
		})
	}
	return out
}
