package enrich

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ParsedName is a contact name split into parts.
type ParsedName struct {
	First          string
	Middle         string
	Last           string
	Qualifications string
}

// qualificationsRe finds the comma that introduces trailing credentials
// such as ", MBA" or ", CPA, CFA".
var qualificationsRe = regexp.MustCompile(`,\s*[A-Z]{2,}`)

var (
	honorifics = map[string]bool{
		"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true,
		"dr": true, "prof": true, "sir": true, "dame": true,
	}
	generational = map[string]bool{
		"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
	}
	titleCaser = cases.Title(language.English)
)

// ParseName splits a full name into first, middle and last parts, after
// peeling off trailing qualifications. Honorifics and generational
// suffixes are dropped. Names written entirely in upper or lower case are
// title-cased. A single word is returned as the first name.
func ParseName(full string) ParsedName {
	var p ParsedName

	namePart := strings.TrimSpace(full)
	if loc := qualificationsRe.FindStringIndex(namePart); loc != nil {
		p.Qualifications = strings.TrimSpace(namePart[loc[0]+1:])
		namePart = strings.TrimSpace(namePart[:loc[0]])
	}
	namePart = strings.TrimRight(namePart, " ,")

	if namePart == strings.ToUpper(namePart) || namePart == strings.ToLower(namePart) {
		namePart = titleCaser.String(namePart)
	}

	words := strings.Fields(namePart)
	for len(words) > 1 && honorifics[normalizeToken(words[0])] {
		words = words[1:]
	}
	for len(words) > 1 && generational[normalizeToken(words[len(words)-1])] {
		words = words[:len(words)-1]
	}

	switch len(words) {
	case 0:
	case 1:
		p.First = words[0]
	default:
		p.First = words[0]
		p.Last = words[len(words)-1]
		p.Middle = strings.Join(words[1:len(words)-1], " ")
	}
	return p
}

func normalizeToken(w string) string {
	return strings.ToLower(strings.Trim(w, ".,"))
}

// LinkedInUsername returns the last path segment of a profile URL, ignoring
// a trailing slash and any query string.
func LinkedInUsername(profileURL string) string {
	u := strings.TrimSpace(profileURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimSuffix(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
