package main

import (
	"fmt"

	"shortly-platform/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新 users、links、clicks 表",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return fmt.Errorf("数据库连接失败: %w", err)
		}
		defer closeDB()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database migrations executed successfully.")
		return nil
	},
}
