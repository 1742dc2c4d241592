package lookup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enrich/internal/model"
)

var refNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		link model.Link
		want string
		ok   bool
	}{
		{"provider rfc3339", model.Link{Date: "2024-03-12T10:00:00Z"}, "2024-03-12", true},
		{"provider date only", model.Link{Date: "2024-03-12"}, "2024-03-12", true},
		{"description short month", model.Link{Description: "Posted 12 Mar 2024 by the host"}, "2024-03-12", true},
		{"description long month", model.Link{Description: "Aired on 5 February 2024."}, "2024-02-05", true},
		{"bad provider date falls back", model.Link{Date: "last week", Description: "1 Jan 2024"}, "2024-01-01", true},
		{"no date", model.Link{Description: "A great interview"}, "", false},
		{"unparseable description", model.Link{Description: "Chapter 12 of 2024"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.link)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format(time.DateOnly))
			}
		})
	}
}

func TestPriority(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, PriorityRecent, Priority(day(2024, time.May, 1), true, refNow))
	assert.Equal(t, PriorityRecent, Priority(day(2024, time.March, 20), true, refNow))
	assert.Equal(t, PriorityThisYear, Priority(day(2024, time.January, 10), true, refNow))
	assert.Equal(t, PriorityThisYear, Priority(day(2023, time.June, 20), true, refNow))
	assert.Equal(t, PriorityStale, Priority(day(2023, time.June, 1), true, refNow))
	assert.Equal(t, PriorityUndated, Priority(time.Time{}, false, refNow))
}

func TestRankMedia(t *testing.T) {
	links := []model.Link{
		{Title: "undated", URL: "u1"},
		{Title: "older this year", URL: "u2", Date: "2024-01-05"},
		{Title: "stale", URL: "u3", Date: "2022-01-01"},
		{Title: "recent", URL: "u4", Description: "10 May 2024 episode"},
		{Title: "newer this year", URL: "u5", Date: "2024-02-20T08:00:00Z"},
		{Title: "most recent", URL: "u6", Date: "2024-06-01"},
	}

	got := RankMedia(links, refNow, 0)

	titles := make([]string, len(got))
	for i, l := range got {
		titles[i] = l.Title
	}
	assert.Equal(t, []string{"most recent", "recent", "newer this year", "older this year", "undated"}, titles)
	assert.Equal(t, "2024-05-10", got[1].Date)
	assert.Equal(t, "2024-02-20", got[2].Date)
	assert.Equal(t, PriorityRecent, got[0].Priority)
	assert.Equal(t, PriorityThisYear, got[2].Priority)
	assert.Equal(t, PriorityUndated, got[4].Priority)
	assert.Empty(t, got[4].Date)
}

func TestRankMedia_MaxResults(t *testing.T) {
	links := []model.Link{
		{Title: "a", Date: "2024-06-01"},
		{Title: "b", Date: "2024-05-01"},
		{Title: "c", Date: "2024-04-01"},
	}
	got := RankMedia(links, refNow, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
}

func TestRankMedia_Empty(t *testing.T) {
	assert.Empty(t, RankMedia(nil, refNow, 10))
}
