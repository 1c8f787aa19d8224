package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt"
)

// staticKey serves a key given on the command line.
type staticKey passcrypt.PublicKey

func (k staticKey) GetPublicKey(context.Context) (passcrypt.PublicKey, error) {
	return passcrypt.PublicKey(k), nil
}

func (a *app) encryptCmd() *cobra.Command {
	var publicKey string

	cmd := &cobra.Command{
		Use:   "encrypt [password]",
		Short: "Encrypt a password for the server",
		Long: "Encrypt a password to the server public key and print the base64 blob.\n" +
			"The password is read from stdin when not given as an argument.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readSecret(args, 0, "password")
			if err != nil {
				return err
			}

			var blob string
			if publicKey != "" {
				blob, err = a.encryptOffline(cmd.Context(), publicKey, password)
			} else {
				var client *passcrypt.Client
				client, err = a.client()
				if err == nil {
					blob, err = client.EncryptPassword(cmd.Context(), password)
				}
			}
			if err != nil {
				return err
			}

			a.printf("%s\n", blob)
			return nil
		},
	}
	cmd.Flags().StringVar(&publicKey, "public-key", "", "encrypt to this hex key instead of fetching it")
	return cmd
}

func (a *app) encryptOffline(ctx context.Context, publicKeyHex, password string) (string, error) {
	pub, err := passcrypt.ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return "", err
	}

	opts := []passcrypt.EncryptorOption{passcrypt.WithEncryptorLogger(a.logger.Logger)}
	if b := a.cfg.Client.Backend; b != "" {
		opts = append(opts, passcrypt.WithBackend(passcrypt.Backend(b)))
	}

	enc, err := passcrypt.NewPasswordEncryptor(staticKey(pub), opts...)
	if err != nil {
		return "", err
	}
	return enc.Encrypt(ctx, password)
}
