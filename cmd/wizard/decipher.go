package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/cipherengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/entropy"
)

var decipherCmd = &cobra.Command{
	Use:   "decipher <input> <output>",
	Short: "Decipher a file produced by encipher",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authorize(currentRole(), PermDecipher); err != nil {
			return err
		}
		return runDecipher(args[0], args[1])
	},
}

func runDecipher(inputPath, outputPath string) error {
	algo, err := parseCipher(cipherFlag)
	if err != nil {
		return err
	}
	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}
	key, err := loadKey()
	if err != nil {
		return err
	}

	ctx, err := cipherengine.Acquire(algo, mode)
	if err != nil {
		return err
	}
	if err := ctx.SetKey(key); err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}
	if len(data) < ctx.BlockSize()+8 {
		return fmt.Errorf("input is too short to contain a nonce and length header")
	}
	nonce := data[:ctx.BlockSize()]
	plainLen := getUint64(data[ctx.BlockSize() : ctx.BlockSize()+8])
	ciphertext := data[ctx.BlockSize()+8:]

	if err := ctx.SetNonce(nonce); err != nil {
		return err
	}

	buf := buffer.FromBytes(ciphertext)
	if err := ctx.Decipher(buf); err != nil {
		return err
	}

	coder, err := parseEntropy(entropyFlag)
	if err != nil {
		return err
	}
	plaintext := buf.Bytes()
	if coder != entropy.None {
		ec, err := entropy.Acquire(coder, levelFlag)
		if err != nil {
			return err
		}
		if err := ec.RestoreEntropy(int(plainLen), plaintext); err != nil {
			return err
		}
		plaintext = ec.Chaos().Bytes()
	}

	if err := os.WriteFile(outputPath, plaintext, 0600); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}
