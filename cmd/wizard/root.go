// The wizard CLI is the boundary through which this module's
// cryptographic core is invoked from the command line.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"hermannm.dev/devlog"
)

var (
	cipherFlag     string
	modeFlag       string
	hashFlag       string
	macFlag        string
	keyLengthFlag  int
	entropyFlag    string
	levelFlag      int
	randomFlag     string
	authMethodFlag string
	keyFileFlag    string
	chunkSizeFlag  int
	roleFlag       string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Symmetric cryptography toolkit",
	Long: `wizard provides the cipher, hash, and secret-authentication
primitives of the Wizard's Toolkit core from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyRandomFlag(randomFlag)
	},
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{Level: level})))
	cobra.OnInitialize(func() {
		if verboseFlag {
			level.Set(slog.LevelDebug)
		}
	})

	rootCmd.PersistentFlags().StringVar(&cipherFlag, "cipher", "aes", "cipher algorithm: aes|serpent|twofish|chacha")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "ctr", "cipher mode: ecb|cbc|cfb|ofb|ctr")
	rootCmd.PersistentFlags().StringVar(&hashFlag, "hash", "sha256", "hash algorithm")
	rootCmd.PersistentFlags().StringVar(&macFlag, "mac", "sha256", "HMAC hash algorithm")
	rootCmd.PersistentFlags().IntVar(&keyLengthFlag, "key-length", 256, "authenticator key length in bits: 256|512|1024|2048")
	rootCmd.PersistentFlags().StringVar(&entropyFlag, "entropy", "none", "entropy coder: none|bzip|lzma|zip")
	rootCmd.PersistentFlags().IntVar(&levelFlag, "level", 6, "entropy coder compression level 0-9")
	rootCmd.PersistentFlags().StringVar(&randomFlag, "random", "system", "randomness source: none|system|seed=<int>")
	rootCmd.PersistentFlags().StringVar(&authMethodFlag, "authenticate", "secret", "authentication method: secret|public (only secret is accepted)")
	rootCmd.PersistentFlags().StringVar(&keyFileFlag, "key", "", "path to the cipher key file")
	rootCmd.PersistentFlags().IntVar(&chunkSizeFlag, "chunksize", 64*1024, "I/O chunk size in bytes (accepted but unused: input and output files are read and written whole)")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", string(RoleAdmin), "CLI operator role: admin|operator|auditor")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(encipherCmd)
	rootCmd.AddCommand(decipherCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(authenticateCmd)
	rootCmd.AddCommand(summaryCmd)
}
