package main

import (
	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt/internal/keyserver"
)

func (a *app) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for a server user entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readSecret(args, 0, "password")
			if err != nil {
				return err
			}
			hash, err := keyserver.HashPassword(password)
			if err != nil {
				return err
			}
			a.printf("%s\n", hash)
			return nil
		},
	}
}
