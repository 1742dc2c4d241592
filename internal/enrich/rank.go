package enrich

import (
	"slices"
	"strings"
	"time"

	"github.com/sells-group/contact-enrich/internal/model"
)

const (
	day = 24 * time.Hour

	// NewRoleWindow is the longest tenure of a current role still treated as
	// a recent move.
	NewRoleWindow = 180 * day
	// LoyaltyThreshold is the shortest tenure at the current company treated
	// as long service.
	LoyaltyThreshold = 3650 * day
)

// RankExperiences selects the experiences worth surfacing to a reviewer:
// a current role matching the most likely current title that started
// within NewRoleWindow, or a stint at the current company lasting at least
// LoyaltyThreshold. Either kind must also match the keyword vocabulary.
// Experiences without a start year are ignored. The result is ordered by
// start date, newest first.
func RankExperiences(experiences []model.Experience, jobTitle, currentCompany string, kw model.PqKeywords, now time.Time) *model.ExperiencesWithMetadata {
	dated := make([]model.Experience, 0, len(experiences))
	for _, e := range experiences {
		if _, ok := e.StartDate(); ok {
			dated = append(dated, e)
		}
	}
	slices.SortStableFunc(dated, func(a, b model.Experience) int {
		as, _ := a.StartDate()
		bs, _ := b.StartDate()
		return bs.Compare(as)
	})

	out := &model.ExperiencesWithMetadata{
		Experiences:            []model.Experience{},
		MostLikelyCurrentTitle: jobTitle,
	}
	for _, e := range dated {
		if e.IsCurrent() {
			out.MostLikelyCurrentTitle = e.Title
			out.TitleMismatch = !strings.EqualFold(e.Title, jobTitle)
			break
		}
	}

	for _, e := range dated {
		d := e.Duration(now)
		newRole := e.IsCurrent() && e.Title == out.MostLikelyCurrentTitle && d <= NewRoleWindow
		loyal := strings.EqualFold(e.Company, currentCompany) && d >= LoyaltyThreshold
		if (newRole || loyal) && e.MatchesKeywords(kw) {
			out.Experiences = append(out.Experiences, e)
		}
	}
	return out
}
