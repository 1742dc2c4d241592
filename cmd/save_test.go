package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCells(t *testing.T) {
	cells, err := parseCells([]string{"Hook Name=Podcast", "Notes=", " Status =a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Hook Name": "Podcast",
		"Notes":     "",
		"Status":    "a=b",
	}, cells)
}

func TestParseCells_Invalid(t *testing.T) {
	_, err := parseCells([]string{"no-separator"})
	assert.Error(t, err)

	_, err = parseCells([]string{"=value"})
	assert.Error(t, err)
}

func TestParseCells_Empty(t *testing.T) {
	cells, err := parseCells(nil)
	require.NoError(t, err)
	assert.Empty(t, cells)
}
