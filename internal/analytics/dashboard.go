// Package analytics 基于用户的短链接计算仪表盘统计数据，不做任何 I/O
package analytics

import (
	"math"
	"sort"
	"time"

	"shortly-platform/internal/model"
)

// TopLocationLimit 仪表盘展示的热门地区数量
const TopLocationLimit = 3

// LinkSummary 单个短链接的统计投影
type LinkSummary struct {
	OriginalURL string    `json:"originalUrl"`
	ShortID     string    `json:"shortId"`
	ClickCount  int       `json:"clickCount"`
	Locations   []string  `json:"locations"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LocationCount 地区出现次数
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// Dashboard 用户维度的汇总数据
type Dashboard struct {
	TotalLinks    int             `json:"totalLinks"`
	TotalClicks   int             `json:"totalClicks"`
	AverageClicks float64         `json:"averageClicks"`
	Links         []LinkSummary   `json:"links"`
	TopLocations  []LocationCount `json:"topLocations"`
}

// Summarize 汇总用户的全部短链接
func Summarize(links []model.Link) Dashboard {
	d := Dashboard{
		TotalLinks: len(links),
		Links:      make([]LinkSummary, 0, len(links)),
	}
	for _, link := range links {
		d.TotalClicks += len(link.Clicks)
		d.Links = append(d.Links, Project(link))
	}
	d.AverageClicks = Average(d.TotalClicks, d.TotalLinks)
	d.TopLocations = TopLocations(d.Links, TopLocationLimit)
	return d
}

// Project 生成单个短链接的投影，地区去重并保留首次出现的顺序
func Project(link model.Link) LinkSummary {
	seen := make(map[string]struct{}, len(link.Clicks))
	locations := make([]string, 0)
	for _, click := range link.Clicks {
		if _, ok := seen[click.Location]; ok {
			continue
		}
		seen[click.Location] = struct{}{}
		locations = append(locations, click.Location)
	}
	return LinkSummary{
		OriginalURL: link.OriginalURL,
		ShortID:     link.ShortID,
		ClickCount:  len(link.Clicks),
		Locations:   locations,
		CreatedAt:   link.CreatedAt,
	}
}

// Average 平均点击数，保留两位小数；没有短链接时为 0
func Average(totalClicks, totalLinks int) float64 {
	if totalLinks == 0 {
		return 0
	}
	return math.Round(float64(totalClicks)/float64(totalLinks)*100) / 100
}

// TopLocations 统计窗口内各地区出现在多少个短链接中，按次数降序取前 n 个。
// 次数相同时按首次出现的顺序排列。
func TopLocations(window []LinkSummary, n int) []LocationCount {
	index := make(map[string]int)
	counts := make([]LocationCount, 0)
	for _, link := range window {
		for _, loc := range link.Locations {
			if i, ok := index[loc]; ok {
				counts[i].Count++
				continue
			}
			index[loc] = len(counts)
			counts = append(counts, LocationCount{Location: loc, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
