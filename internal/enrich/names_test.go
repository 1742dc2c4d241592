package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		want ParsedName
	}{
		{"Jane Doe", ParsedName{First: "Jane", Last: "Doe"}},
		{"Jane Q. Doe", ParsedName{First: "Jane", Middle: "Q.", Last: "Doe"}},
		{"Jane Doe, MBA", ParsedName{First: "Jane", Last: "Doe", Qualifications: "MBA"}},
		{"Jane Doe, CPA, CFA", ParsedName{First: "Jane", Last: "Doe", Qualifications: "CPA, CFA"}},
		{"Dr. Jane Doe", ParsedName{First: "Jane", Last: "Doe"}},
		{"John Smith Jr.", ParsedName{First: "John", Last: "Smith"}},
		{"JANE DOE", ParsedName{First: "Jane", Last: "Doe"}},
		{"jane doe", ParsedName{First: "Jane", Last: "Doe"}},
		{"Mary Ann van Buren", ParsedName{First: "Mary", Middle: "Ann van", Last: "Buren"}},
		{"Cher", ParsedName{First: "Cher"}},
		{"", ParsedName{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseName(tt.in), "input %q", tt.in)
	}
}

func TestLinkedInUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.linkedin.com/in/janedoe", "janedoe"},
		{"https://www.linkedin.com/in/janedoe/", "janedoe"},
		{"https://www.linkedin.com/in/janedoe?trk=abc", "janedoe"},
		{"janedoe", "janedoe"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LinkedInUsername(tt.in), "input %q", tt.in)
	}
}
