package main

import (
	"fmt"

	"shortly-platform/internal/analytics"
	"shortly-platform/internal/store"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var statsOwner uint

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "以 JSON 输出某个用户的仪表盘统计",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsOwner == 0 {
			return fmt.Errorf("--owner 必须大于 0")
		}
		db, closeDB, err := openDB()
		if err != nil {
			return fmt.Errorf("数据库连接失败: %w", err)
		}
		defer closeDB()

		links, err := store.NewLinkStore(db).ListByOwner(cmd.Context(), statsOwner)
		if err != nil {
			return fmt.Errorf("查询短链接失败: %w", err)
		}

		out, err := json.MarshalIndent(analytics.Summarize(links), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	statsCmd.Flags().UintVar(&statsOwner, "owner", 0, "用户 ID")
	_ = statsCmd.MarkFlagRequired("owner")
}
