package main

import (
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var totp string

	cmd := &cobra.Command{
		Use:   "login <username> [password]",
		Short: "Log in to the server with an encrypted password",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readSecret(args, 1, "password")
			if err != nil {
				return err
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			res, err := client.Login(cmd.Context(), args[0], password, totp)
			if err != nil {
				return err
			}
			if res.RequiresTwoFactor() {
				a.printf("%s: 2FA code required, retry with --totp\n", res.Username)
				return nil
			}
			a.printf("%s: %s\n", res.Username, res.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&totp, "totp", "", "2FA code")
	return cmd
}
