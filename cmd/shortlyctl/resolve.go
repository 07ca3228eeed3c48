package main

import (
	"fmt"
	"time"

	"shortly-platform/internal/geo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <ip>",
	Short: "按配置的位置服务解析一个 IP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, public := geo.Normalize(args[0]); !public {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s 不是公网地址，不会发起查询\n", args[0])
		}
		resolver := geo.NewResolver(geo.Options{
			Endpoint:        cfg.Geo.Endpoint,
			Timeout:         cfg.GeoTimeout(),
			BreakerFailures: cfg.Geo.BreakerFailures,
			BreakerCooldown: time.Duration(cfg.Geo.BreakerCooldown) * time.Second,
		}, nil, zap.S())

		fmt.Fprintln(cmd.OutOrStdout(), resolver.Locate(cmd.Context(), args[0]))
		return nil
	},
}
