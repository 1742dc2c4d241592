package model

import (
	"strings"
	"time"
)

// Date is a partial calendar date as returned by the profile provider.
type Date struct {
	Day   int `json:"day,omitempty"`
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// Time resolves the date; missing month or day default to 1. The second
// return is false when the year is missing.
func (d *Date) Time() (time.Time, bool) {
	if d == nil || d.Year == 0 {
		return time.Time{}, false
	}
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// Experience is one role in a profile's work history.
type Experience struct {
	StartsAt                  *Date  `json:"starts_at"`
	EndsAt                    *Date  `json:"ends_at"`
	Company                   string `json:"company"`
	CompanyLinkedInProfileURL string `json:"company_linkedin_profile_url,omitempty"`
	Title                     string `json:"title"`
	Description               string `json:"description"`
	Location                  string `json:"location"`
	LogoURL                   string `json:"logo_url,omitempty"`
}

// IsCurrent reports whether the role has no end date.
func (e Experience) IsCurrent() bool {
	return e.EndsAt == nil
}

// StartDate returns the resolved start date.
func (e Experience) StartDate() (time.Time, bool) {
	return e.StartsAt.Time()
}

// Duration is (end or now) minus start, zero when the start is unknown.
func (e Experience) Duration(now time.Time) time.Duration {
	start, ok := e.StartDate()
	if !ok {
		return 0
	}
	end, ok := e.EndsAt.Time()
	if !ok {
		end = now
	}
	return end.Sub(start)
}

// MatchesKeywords reports whether the title contains a title or seniority
// keyword and no negative keyword, case-insensitively.
func (e Experience) MatchesKeywords(kw PqKeywords) bool {
	if e.Title == "" {
		return false
	}
	title := strings.ToLower(e.Title)
	contains := func(list []string) bool {
		for _, k := range list {
			if strings.Contains(title, strings.ToLower(k)) {
				return true
			}
		}
		return false
	}
	return (contains(kw.Titles) || contains(kw.Seniority)) && !contains(kw.NegativeKeywords)
}

// Education is one entry of a profile's education history.
type Education struct {
	StartsAt     *Date  `json:"starts_at"`
	EndsAt       *Date  `json:"ends_at"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	DegreeName   string `json:"degree_name,omitempty"`
	School       string `json:"school,omitempty"`
	Description  string `json:"description,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
}

// VolunteerExperience is one entry of a profile's volunteer history.
type VolunteerExperience struct {
	StartsAt    *Date  `json:"starts_at"`
	EndsAt      *Date  `json:"ends_at"`
	Title       string `json:"title,omitempty"`
	Cause       string `json:"cause,omitempty"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// Certification is a licence or certificate listed on a profile.
type Certification struct {
	StartsAt  *Date  `json:"starts_at"`
	EndsAt    *Date  `json:"ends_at"`
	Name      string `json:"name,omitempty"`
	Authority string `json:"authority,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ProfilePayload is the profile-data provider response.
type ProfilePayload struct {
	PublicIdentifier        string                `json:"public_identifier,omitempty"`
	ProfilePicURL           string                `json:"profile_pic_url,omitempty"`
	BackgroundCoverImageURL string                `json:"background_cover_image_url,omitempty"`
	FirstName               string                `json:"first_name,omitempty"`
	LastName                string                `json:"last_name,omitempty"`
	FullName                string                `json:"full_name,omitempty"`
	Occupation              string                `json:"occupation,omitempty"`
	Headline                string                `json:"headline,omitempty"`
	Summary                 string                `json:"summary,omitempty"`
	Country                 string                `json:"country,omitempty"`
	City                    string                `json:"city,omitempty"`
	State                   string                `json:"state,omitempty"`
	Industry                string                `json:"industry,omitempty"`
	FollowerCount           int                   `json:"follower_count,omitempty"`
	Connections             int                   `json:"connections,omitempty"`
	Experiences             []Experience          `json:"experiences"`
	Education               []Education           `json:"education"`
	Languages               []string              `json:"languages"`
	VolunteerWork           []VolunteerExperience `json:"volunteer_work"`
	Certifications          []Certification       `json:"certifications"`
	Skills                  []string              `json:"skills,omitempty"`
	Interests               []string              `json:"interests,omitempty"`
}
