package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/buffer"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/cipherengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/entropy"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
)

var encipherCmd = &cobra.Command{
	Use:   "encipher <input> <output>",
	Short: "Encipher a file with the configured cipher and mode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authorize(currentRole(), PermEncipher); err != nil {
			return err
		}
		return runEncipher(args[0], args[1])
	},
}

// runEncipher writes the generated nonce, the original plaintext length,
// and the (optionally entropy-coded) ciphertext: <nonce bytes><8-byte
// big-endian plaintext length><ciphertext bytes>. decipher reads the same
// layout back.
func runEncipher(inputPath, outputPath string) error {
	plaintext, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}

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
	src, err := random.Acquire(hashengine.SHA256)
	if err != nil {
		return err
	}
	nonce, err := ctx.GenerateNonce(src)
	if err != nil {
		return err
	}

	coder, err := parseEntropy(entropyFlag)
	if err != nil {
		return err
	}
	body := plaintext
	if coder != entropy.None {
		ec, err := entropy.Acquire(coder, levelFlag)
		if err != nil {
			return err
		}
		if err := ec.IncreaseEntropy(plaintext); err != nil {
			return err
		}
		body = ec.Chaos().Bytes()
	}

	buf := buffer.FromBytes(body)
	if err := ctx.Encipher(buf); err != nil {
		return err
	}

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("could not open output: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(nonce.Bytes()); err != nil {
		return fmt.Errorf("could not write nonce: %w", err)
	}
	var plainLen [8]byte
	putUint64(plainLen[:], uint64(len(plaintext)))
	if _, err := out.Write(plainLen[:]); err != nil {
		return fmt.Errorf("could not write plaintext length: %w", err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("could not write ciphertext: %w", err)
	}
	return nil
}

func loadKey() ([]byte, error) {
	if keyFileFlag == "" {
		return nil, fmt.Errorf("a -key file is required")
	}
	key, err := os.ReadFile(keyFileFlag)
	if err != nil {
		return nil, fmt.Errorf("could not read key file: %w", err)
	}
	return key, nil
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func getUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
