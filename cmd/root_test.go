package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "run", "sheets", "save", "contacts"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "contact-enrich", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunCommand_Flags(t *testing.T) {
	require.NotNil(t, runCmd.Flags().Lookup("spreadsheet"))
	flag := runCmd.Flags().Lookup("auto-continue")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestSaveCommand_Flags(t *testing.T) {
	for _, name := range []string{"spreadsheet", "row", "set", "username"} {
		assert.NotNil(t, saveCmd.Flags().Lookup(name), "save command should have --%s flag", name)
	}
}

func TestContactsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range contactsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["get"])
	assert.True(t, names["list"])

	flag := contactsListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "100", flag.DefValue)
}
