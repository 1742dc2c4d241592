package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLetter(tt.n), "n=%d", tt.n)
		assert.Equal(t, tt.n, ColumnNumber(tt.want), "letters=%s", tt.want)
	}
}

func TestColumnNumber_Invalid(t *testing.T) {
	assert.Equal(t, 0, ColumnNumber("A1"))
	assert.Equal(t, 0, ColumnNumber(""))
}

func TestColumnSpan(t *testing.T) {
	first, last, ok := ColumnSpan("A:ZZ")
	assert.True(t, ok)
	assert.Equal(t, 1, first)
	assert.Equal(t, 702, last)

	_, _, ok = ColumnSpan("A1:C4")
	assert.False(t, ok)
	_, _, ok = ColumnSpan("C:A")
	assert.False(t, ok)
	_, _, ok = ColumnSpan("")
	assert.False(t, ok)
}

func TestFilterHighlights(t *testing.T) {
	got := FilterHighlights([]string{"First Name", "", "By the way", "Personalization Date", "Company"})
	assert.Equal(t, []string{"First Name", "Company"}, got)
	assert.Empty(t, FilterHighlights(nil))
}
