package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/hashengine"
	"github.com/ImageMagick/WizardsToolkit-sub001/internal/random"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Report the module's self-test and operational diagnostics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authorize(currentRole(), PermSummary); err != nil {
			return err
		}
		return runSummary(cmd)
	},
}

func runSummary(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	src, err := random.Acquire(hashengine.SHA256)
	if err != nil {
		return err
	}
	report, err := src.SelfTest(4096)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "wizard diagnostics")
	fmt.Fprintln(out, "ciphers:   aes, serpent, twofish, chacha (ctr only)")
	fmt.Fprintln(out, "modes:     ecb, cbc, cfb, ofb, ctr")
	fmt.Fprintln(out, "hashes:    crc64, md5, sha1, sha224/256/384/512, sha3-224/256/384/512")
	fmt.Fprintln(out, "entropy:   bzip, lzma, zip")
	if seed, pinned := random.GetSecretKey(); pinned {
		fmt.Fprintf(out, "random:    deterministic, seed=%d\n", seed)
	} else {
		fmt.Fprintln(out, "random:    system entropy")
	}
	fmt.Fprintf(out, "self-test: %s\n", report)
	fmt.Fprintf(out, "role:      %s\n", currentRole())
	fmt.Fprintf(out, "policy:    %d authorization decisions logged this session\n", policyEventCount())
	return nil
}
