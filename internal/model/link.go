package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Link 短链接模型，一个原始 URL 对应一个短码
type Link struct {
	ID          uint   `gorm:"primarykey" json:"-"`
	ShortID     string `gorm:"size:32;uniqueIndex;not null" json:"shortId"`
	OriginalURL string `gorm:"type:text;not null" json:"originalUrl"`
	// URLHash 原始 URL 的 sha256，用于 (owner, url) 唯一约束
	URLHash   string    `gorm:"size:64;not null;uniqueIndex:idx_owner_url,priority:2" json:"-"`
	OwnerID   uint      `gorm:"not null;index;uniqueIndex:idx_owner_url,priority:1" json:"-"`
	Clicks    []Click   `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"clicks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// HashURL 计算原始 URL 的摘要
func HashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
