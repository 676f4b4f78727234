package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/authenticate"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/passphrase"
)

var authenticateCmd = &cobra.Command{
	Use:   "authenticate <keyring-file> [id-hex]",
	Short: "Generate or verify a passphrase-bound secret key",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authorize(currentRole(), PermAuthenticate); err != nil {
			return err
		}
		if authMethodFlag != "secret" {
			return fmt.Errorf("unsupported -authenticate method %q (only \"secret\" is implemented)", authMethodFlag)
		}
		if err := parseKeyLength(keyLengthFlag); err != nil {
			return err
		}
		auth, err := authenticate.Acquire(args[0], keyLengthFlag)
		if err != nil {
			return err
		}

		src := passphrase.New()
		phrase, err := src.Get()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			id, err := auth.Generate(phrase.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.ToHex())
			return nil
		}

		id, err := buffer.FromHex(args[1])
		if err != nil {
			return err
		}
		if err := auth.Authenticate(id, phrase.Bytes()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "authenticated")
		return nil
	},
}
