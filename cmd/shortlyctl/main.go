// shortlyctl 是短链接服务的运维命令行工具
package main

import (
	"fmt"
	"os"

	"shortly-platform/internal/config"
	"shortly-platform/pkg/database"
	"shortly-platform/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "shortlyctl",
	Short:         "Shortly 运维工具",
	Long:          `迁移数据库、查看用户统计、测试 IP 位置解析。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("配置加载失败: %w", err)
		}
		logger.InitLogger(logger.Options{Level: cfg.Log.Level})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")
	rootCmd.AddCommand(migrateCmd, statsCmd, resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDB 打开配置中的数据库，调用方负责关闭
func openDB() (*gorm.DB, func(), error) {
	db, err := database.Open(cfg.DatabaseOptions())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
