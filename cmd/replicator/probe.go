// cmd/replicator/probe.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/atem-replicator/internal/atem"
	"github.com/tamzrod/atem-replicator/internal/config"
	"github.com/tamzrod/atem-replicator/internal/logging"
)

func probeCmd() *cobra.Command {
	var (
		port     int
		duration time.Duration
		interval time.Duration
		send     string
		level    string
	)

	cmd := &cobra.Command{
		Use:   "probe <host>",
		Short: "Connect to a switcher and print decoded recorder status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := logging.New(config.LoggingConfig{Level: level, Format: "console"})
			if err != nil {
				return err
			}
			defer closeLog()

			c := atem.New(atem.Options{Port: port, Logger: log})
			if err := c.Connect(args[0]); err != nil {
				return err
			}
			defer c.Stop()

			if send != "" {
				payload, err := parseHex(send)
				if err != nil {
					return fmt.Errorf("probe: --send: %w", err)
				}
				if _, err := c.Write(payload, 0); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			deadline := time.Now().Add(duration)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			var buf []byte
			seen := c.Datagrams()

			for time.Now().Before(deadline) {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}

				c.ParsePacket()
				if c.Datagrams() == seen {
					continue
				}
				seen = c.Datagrams()

				n, err := c.Read(&buf, 0)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "--- # datagram %d (%d bytes)\n", seen, n)

				rep := c.LastReport()
				if rep.Empty() {
					continue
				}
				if err := printReport(out, rep); err != nil {
					return err
				}
			}

			log.Info("probe finished", zap.Uint64("datagrams", c.Datagrams()))
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", atem.UDPPort, "switcher UDP port")
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to listen")
	cmd.Flags().DurationVar(&interval, "interval", 20*time.Millisecond, "receive poll interval")
	cmd.Flags().StringVar(&send, "send", "", "hex payload to send after connecting")
	cmd.Flags().StringVar(&level, "log-level", "info", "log level (debug logs every datagram as hex)")

	return cmd
}
