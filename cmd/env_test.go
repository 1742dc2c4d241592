package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrich/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Log:   config.LogConfig{Level: "info", Format: "json"},
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "contacts.db")},
		Sheets: config.SheetsConfig{
			Provider:        "workbook",
			WorkbookDir:     filepath.Join(dir, "workbooks"),
			PrimarySheet:    "New Connections",
			AuxSuffix:       "pq",
			Range:           "A:ZZ",
			CacheTTLMinutes: 60,
		},
		Search:    config.SearchConfig{Provider: "jina", MaxConcurrent: 1},
		Jina:      config.JinaConfig{Key: "jina-key", SearchBaseURL: "http://127.0.0.1:1"},
		Proxycurl: config.ProxycurlConfig{Key: "pc-key", BaseURL: "http://127.0.0.1:1", MaxConcurrent: 1},
		Images:    config.ImagesConfig{Dir: filepath.Join(dir, "images"), URLPrefix: "/static/images", MaxConcurrent: 1},
		Pipeline:  config.PipelineConfig{SmallBatchSize: 2, LargeBatchThreshold: 10, RowConcurrency: 1},
	}
}

func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestInitEnv_Contacts(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initEnv(context.Background(), "contacts")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Store)
	assert.Nil(t, env.Cache)
	assert.Nil(t, env.Streams)
}

func TestInitEnv_Save(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initEnv(context.Background(), "save")
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Cache)
	assert.NotNil(t, env.Review)
	assert.NotNil(t, env.Images)
	assert.Nil(t, env.Enricher)
}

func TestInitEnv_Sheets(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initEnv(context.Background(), "sheets")
	require.NoError(t, err)
	defer env.Close()

	list, err := env.Catalog.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInitEnv_Run(t *testing.T) {
	withConfig(t, testConfig(t))

	env, err := initEnv(context.Background(), "run")
	require.NoError(t, err)
	defer env.Close()

	require.NotNil(t, env.Streams)
	st := env.Streams.Create([]string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, st.SpreadsheetIDs)
}

func TestInitEnv_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Proxycurl.Key = ""
	withConfig(t, c)

	_, err := initEnv(context.Background(), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxycurl.key is required")
}

func TestInitStore_UnknownDriver(t *testing.T) {
	c := testConfig(t)
	c.Store.Driver = "mysql"
	withConfig(t, c)

	_, err := initStore(context.Background())
	assert.Error(t, err)
}
