package main

import (
	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt/internal/keystore"
)

func (a *app) keygenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the server key pair",
		Long: "Create the server key pair in the key directory. An existing valid pair\n" +
			"is kept unless --force is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Server.KeyDir
			opts := []keystore.Option{keystore.WithLogger(a.logger.Logger)}

			var (
				store *keystore.Store
				err   error
			)
			if force {
				store, err = keystore.Generate(dir, opts...)
			} else {
				store, err = keystore.LoadOrCreate(dir, opts...)
			}
			if err != nil {
				return err
			}

			priv, _ := store.Paths()
			a.printf("key:         %s\nfingerprint: %s\npublic key:  %s\n", priv, store.Fingerprint(), store.PublicKeyHex())
			return nil
		},
	}
	cmd.Flags().String("key-dir", "", "directory holding the server key pair")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing key pair")
	return cmd
}
