package lookup

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Media mention priorities; lower sorts first.
const (
	PriorityRecent   = 1 // under 3 months old
	PriorityThisYear = 2 // under 12 months old
	PriorityStale    = 3 // 12 months or older, dropped
	PriorityUndated  = 4
)

var descriptionDateRe = regexp.MustCompile(`\b(\d{1,2}\s+\w+\s+\d{4})\b`)

var providerDateLayouts = []string{time.RFC3339, time.DateTime, time.DateOnly}

var descriptionDateLayouts = []string{"2 Jan 2006", "2 January 2006"}

// ExtractDate dates a search result from its provider date, falling back to
// a "12 Mar 2024" style date in its description.
func ExtractDate(link model.Link) (time.Time, bool) {
	if link.Date != "" {
		for _, layout := range providerDateLayouts {
			if t, err := time.Parse(layout, link.Date); err == nil {
				return t.UTC(), true
			}
		}
	}

	m := descriptionDateRe.FindStringSubmatch(link.Description)
	if m == nil {
		return time.Time{}, false
	}
	candidate := strings.Join(strings.Fields(m[1]), " ")
	for _, layout := range descriptionDateLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// monthsBetween counts whole calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// Priority ranks a result by age relative to now.
func Priority(date time.Time, dated bool, now time.Time) int {
	if !dated {
		return PriorityUndated
	}
	switch months := monthsBetween(date, now); {
	case months >= 12:
		return PriorityStale
	case months >= 3:
		return PriorityThisYear
	default:
		return PriorityRecent
	}
}

// RankMedia dates and prioritises media mentions, drops stale ones, and
// orders the rest by priority then newest first. At most maxResults are
// returned when maxResults is positive.
func RankMedia(links []model.Link, now time.Time, maxResults int) []model.Link {
	type ranked struct {
		link model.Link
		date time.Time
	}

	kept := make([]ranked, 0, len(links))
	for _, l := range links {
		date, ok := ExtractDate(l)
		l.Priority = Priority(date, ok, now)
		if l.Priority == PriorityStale {
			continue
		}
		l.Date = ""
		if ok {
			l.Date = date.Format(time.DateOnly)
		}
		kept = append(kept, ranked{link: l, date: date})
	}

	slices.SortStableFunc(kept, func(a, b ranked) int {
		if c := cmp.Compare(a.link.Priority, b.link.Priority); c != 0 {
			return c
		}
		return b.date.Compare(a.date)
	})

	if maxResults > 0 && len(kept) > maxResults {
		kept = kept[:maxResults]
	}
	out := make([]model.Link, len(kept))
	for i, r := range kept {
		out[i] = r.link
	}
	return out
}
