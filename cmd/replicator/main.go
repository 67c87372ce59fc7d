// cmd/replicator/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "replicator",
		Short: "Replicate ATEM recorder status into Modbus register memory",
		Long: `replicator listens to the recorder status a Blackmagic ATEM switcher
publishes over UDP (RTMS, RTMD, RTMR) and mirrors the decoded state into
fixed register blocks on one or more Modbus TCP endpoints.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		runCmd(),
		decodeCmd(),
		probeCmd(),
		versionCmd(),
	)

	return root
}
