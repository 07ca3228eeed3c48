package analytics

import (
	"testing"
	"time"

	"shortly-platform/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clicksAt(locations ...string) []model.Click {
	clicks := make([]model.Click, 0, len(locations))
	for _, loc := range locations {
		clicks = append(clicks, model.Click{Location: loc, Timestamp: time.Now()})
	}
	return clicks
}

func TestSummarize_Totals(t *testing.T) {
	links := []model.Link{
		{ShortID: "a", OriginalURL: "https://a.example", Clicks: clicksAt("Unknown", "Unknown", "Texas, United States")},
		{ShortID: "b", OriginalURL: "https://b.example", Clicks: clicksAt("x", "y", "z", "x", "y")},
	}

	d := Summarize(links)
	assert.Equal(t, 2, d.TotalLinks)
	assert.Equal(t, 8, d.TotalClicks)
	assert.Equal(t, 4.0, d.AverageClicks)

	require.Len(t, d.Links, 2)
	assert.Equal(t, 3, d.Links[0].ClickCount)
	assert.ElementsMatch(t, []string{"Unknown", "Texas, United States"}, d.Links[0].Locations)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, d.Links[1].Locations)
}

func TestSummarize_Empty(t *testing.T) {
	d := Summarize(nil)
	assert.Equal(t, 0, d.TotalLinks)
	assert.Equal(t, 0, d.TotalClicks)
	assert.Equal(t, 0.0, d.AverageClicks)
	assert.NotNil(t, d.Links)
	assert.Empty(t, d.TopLocations)
}

func TestAverage_RoundsToTwoDecimals(t *testing.T) {
	assert.Equal(t, 0.0, Average(10, 0))
	assert.Equal(t, 3.33, Average(10, 3))
	assert.Equal(t, 0.67, Average(2, 3))
	assert.Equal(t, 2.5, Average(5, 2))
}

func TestTopLocations_OrderAndTies(t *testing.T) {
	window := []LinkSummary{
		{Locations: []string{"Chile", "Peru"}},
		{Locations: []string{"Peru", "Spain", "Italy"}},
		{Locations: []string{"Spain", "Chile"}},
		{Locations: []string{"Italy"}},
	}

	top := TopLocations(window, 3)
	// Chile、Peru、Spain、Italy 均为 2 次，按首次出现的顺序取前三
	assert.Equal(t, []LocationCount{
		{Location: "Chile", Count: 2},
		{Location: "Peru", Count: 2},
		{Location: "Spain", Count: 2},
	}, top)
}

func TestTopLocations_DescendingByCount(t *testing.T) {
	window := []LinkSummary{
		{Locations: []string{"A"}},
		{Locations: []string{"B", "C"}},
		{Locations: []string{"C", "B"}},
		{Locations: []string{"C"}},
	}

	top := TopLocations(window, 3)
	assert.Equal(t, []LocationCount{
		{Location: "C", Count: 3},
		{Location: "B", Count: 2},
		{Location: "A", Count: 1},
	}, top)

	assert.Len(t, TopLocations(window, 1), 1)
}
