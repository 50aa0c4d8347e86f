package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"param-server/src/client"
	"param-server/src/config"
	"param-server/src/protocol"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func newGetCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get SYMBOL",
		Short: "Ask a running server for a symbol's parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			years, _ := cmd.Flags().GetInt("years")
			addr, _ := cmd.Flags().GetString("addr")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			if addr == "" {
				addr = dialAddress(cfg)
			}

			p, err := client.NewParamClient(addr, timeout).Get(context.Background(), args[0], years)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), protocol.EncodeParameters(p))
			return nil
		},
	}

	cmd.Flags().Int("years", 0, "lookback in years (server default when 0)")
	cmd.Flags().String("addr", "", "server address (config host:port when empty)")
	cmd.Flags().Duration("timeout", 60*time.Second, "overall request timeout")
	return cmd
}

// -----------------------------------------------------------------------------

// dialAddress turns a wildcard bind host into loopback.
func dialAddress(cfg *config.Config) string {
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(cfg.Port))
}
