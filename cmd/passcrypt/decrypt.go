package main

import (
	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt/internal/keystore"
)

func (a *app) decryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt [blob]",
		Short: "Decrypt a password blob with the server private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := a.readSecret(args, 0, "blob")
			if err != nil {
				return err
			}

			store, err := keystore.Load(a.cfg.Server.KeyDir, keystore.WithLogger(a.logger.Logger))
			if err != nil {
				return err
			}

			password, err := store.Decrypt(blob)
			if err != nil {
				return err
			}
			a.printf("%s\n", password)
			return nil
		},
	}
	cmd.Flags().String("key-dir", "", "directory holding the server key pair")
	return cmd
}
