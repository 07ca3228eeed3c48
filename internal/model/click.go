package model

import (
	"time"
)

// UnknownLocation 无法解析地理位置时的占位值
const UnknownLocation = "Unknown"

// Click 一次短链接访问记录，只追加不修改
type Click struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	LinkID    uint      `gorm:"not null;index" json:"-"`
	IP        string    `gorm:"size:45" json:"ip"`
	Location  string    `gorm:"size:200" json:"location"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (Click) TableName() string {
	return "clicks"
}
