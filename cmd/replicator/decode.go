// cmd/replicator/decode.go
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [hex-datagram...]",
		Short: "Decode captured datagrams offline",
		Long: `Decode one or more datagrams given as hex and print the recorder status
found in each. Without arguments, one datagram per line is read from stdin.
Whitespace and ':' separators inside the hex are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				sc.Buffer(make([]byte, 64*1024), 1024*1024)
				for sc.Scan() {
					if line := strings.TrimSpace(sc.Text()); line != "" {
						args = append(args, line)
					}
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("decode: read stdin: %w", err)
				}
			}

			for i, arg := range args {
				datagram, err := parseHex(arg)
				if err != nil {
					return fmt.Errorf("decode: datagram %d: %w", i, err)
				}
				if len(args) > 1 {
					fmt.Fprintf(cmd.OutOrStdout(), "--- # datagram %d (%d bytes)\n", i, len(datagram))
				}
				if err := printReport(cmd.OutOrStdout(), recstatus.Decode(datagram)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func parseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':', '\r', '\n':
			return -1
		}
		return r
	}, s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	return hex.DecodeString(clean)
}
