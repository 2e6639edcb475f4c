package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/iSundram/ion/internal/container"
	"github.com/iSundram/ion/internal/transform"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show container structure without attempting recovery",
	Long: `Parses the header and payload of a container and prints what it finds:
header fields, payload size and entropy, the sniffed compression format
of the base64-decoded bytes, and a per-section entropy profile. No
decode strategies are run and nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	c, err := container.Parse(raw)
	if err != nil {
		if errors.Is(err, container.ErrMalformedContainer) {
			return fmt.Errorf("%s is not an ionCube container: %w", args[0], err)
		}
		return err
	}

	fields := c.Header.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("format:   %s (version %s)\n", c.Header.Format, c.Header.Version())
	for _, k := range keys {
		fmt.Printf("  %-16s %s\n", k, fields[k])
	}
	fmt.Printf("payload:  %d base64 chars, entropy %.3f bits/byte\n",
		len(c.Payload), transform.Entropy(c.Payload))

	decoded, err := transform.Base64Decode(c.Payload)
	if err != nil {
		fmt.Println("decoded:  payload is not valid base64")
		return nil
	}

	fmt.Printf("decoded:  %d bytes, entropy %.3f bits/byte, compression %s\n",
		len(decoded), transform.Entropy(decoded), transform.SniffCompression(decoded))

	preview := decoded
	if len(preview) > 16 {
		preview = preview[:16]
	}
	fmt.Printf("leading bytes: % x\n", preview)

	fmt.Println("entropy profile:")
	for i, e := range transform.SectionEntropy(decoded, 8) {
		fmt.Printf("  section %d: %.3f\n", i, e)
	}
	return nil
}
