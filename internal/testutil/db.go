// Package testutil 提供测试用的内存数据库等公共设施
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"shortly-platform/internal/model"
	"shortly-platform/pkg/database"

	"gorm.io/gorm"
)

var dbSeq int64

// NewTestDB 打开一个独立的内存 SQLite 库并完成迁移，测试结束自动关闭
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	path := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))

	db, err := database.Open(database.Options{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("无法连接到内存数据库: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CountClicks 统计某个短链接的点击行数
func CountClicks(t testing.TB, db *gorm.DB, linkID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.Click{}).Where("link_id = ?", linkID).Count(&count).Error; err != nil {
		t.Fatalf("统计点击数失败: %v", err)
	}
	return count
}
