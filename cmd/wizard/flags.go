package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/cipherengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/entropy"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
)

// parseCipher maps the -cipher flag's name to a cipherengine.Algorithm.
func parseCipher(name string) (cipherengine.Algorithm, error) {
	switch strings.ToLower(name) {
	case "aes":
		return cipherengine.AES, nil
	case "serpent":
		return cipherengine.Serpent, nil
	case "twofish":
		return cipherengine.Twofish, nil
	case "chacha":
		return cipherengine.Chacha, nil
	default:
		return cipherengine.UndefinedCipher, fmt.Errorf("unsupported cipher %q", name)
	}
}

// parseMode maps the -mode flag's name to a cipherengine.Mode.
func parseMode(name string) (cipherengine.Mode, error) {
	switch strings.ToLower(name) {
	case "ecb":
		return cipherengine.ECB, nil
	case "cbc":
		return cipherengine.CBC, nil
	case "cfb":
		return cipherengine.CFB, nil
	case "ofb":
		return cipherengine.OFB, nil
	case "ctr":
		return cipherengine.CTR, nil
	default:
		return cipherengine.UndefinedMode, fmt.Errorf("unsupported cipher mode %q", name)
	}
}

// parseHash maps the -hash/-mac flag's name to a hashengine.Algorithm.
func parseHash(name string) (hashengine.Algorithm, error) {
	switch strings.ToLower(name) {
	case "none":
		return hashengine.None, nil
	case "crc64":
		return hashengine.CRC64, nil
	case "md5":
		return hashengine.MD5, nil
	case "sha1":
		return hashengine.SHA1, nil
	case "sha224":
		return hashengine.SHA224, nil
	case "sha256":
		return hashengine.SHA256, nil
	case "sha384":
		return hashengine.SHA384, nil
	case "sha512":
		return hashengine.SHA512, nil
	case "sha3-224":
		return hashengine.SHA3224, nil
	case "sha3-256":
		return hashengine.SHA3256, nil
	case "sha3-384":
		return hashengine.SHA3384, nil
	case "sha3-512":
		return hashengine.SHA3512, nil
	default:
		return hashengine.Undefined, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}

// parseEntropy maps the -entropy flag's name to an entropy.Algorithm.
func parseEntropy(name string) (entropy.Algorithm, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return entropy.None, nil
	case "bzip":
		return entropy.BZIP, nil
	case "lzma":
		return entropy.LZMA, nil
	case "zip":
		return entropy.ZIP, nil
	default:
		return entropy.Undefined, fmt.Errorf("unsupported entropy algorithm %q", name)
	}
}

// parseKeyLength validates the -key-length flag against the CLI's
// supported bit lengths.
func parseKeyLength(bits int) error {
	switch bits {
	case 256, 512, 1024, 2048:
		return nil
	default:
		return fmt.Errorf("unsupported key length %d (want 256, 512, 1024 or 2048)", bits)
	}
}

// applyRandomFlag configures process-wide randomness per the -random
// flag: "none"/"system" leave OS entropy in effect; "seed=<int>" pins a
// deterministic secret key for the process per §4.4.
func applyRandomFlag(spec string) error {
	switch {
	case spec == "" || spec == "system" || spec == "none":
		random.ClearSecretKey()
		return nil
	case strings.HasPrefix(spec, "seed="):
		seedStr := strings.TrimPrefix(spec, "seed=")
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -random seed %q: %w", seedStr, err)
		}
		random.SetSecretKey(seed)
		return nil
	default:
		return fmt.Errorf("unsupported -random value %q", spec)
	}
}
