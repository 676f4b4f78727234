package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hmacengine"
)

var hashCmd = &cobra.Command{
	Use:   "hash <input>",
	Short: "Digest a file, optionally keyed with -mac and -key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authorize(currentRole(), PermHash); err != nil {
			return err
		}
		digest, err := runHash(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}

func runHash(inputPath string) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("could not read input: %w", err)
	}

	if keyFileFlag != "" {
		algo, err := parseHash(macFlag)
		if err != nil {
			return "", err
		}
		key, err := loadKey()
		if err != nil {
			return "", err
		}
		digest, err := hmacengine.Construct(algo, key, data)
		if err != nil {
			return "", err
		}
		return digest.ToHex(), nil
	}

	algo, err := parseHash(hashFlag)
	if err != nil {
		return "", err
	}
	digest, err := hashengine.Sum(algo, data)
	if err != nil {
		return "", err
	}
	return digest.ToHex(), nil
}
