package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

func (a *app) pubkeyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Fetch and print the server public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			pub, err := client.PublicKey(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.streams.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"public_key":  pub.Hex(),
					"algorithm":   crypto.Algorithm,
					"fingerprint": pub.Fingerprint(),
				})
			}
			a.printf("%s\n", pub.Hex())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print key, algorithm and fingerprint as JSON")
	return cmd
}
