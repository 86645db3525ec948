package main

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ICTylor/json-to-relational/internal/config"
	"github.com/ICTylor/json-to-relational/internal/fetcher"
	"github.com/ICTylor/json-to-relational/internal/model"
)

const oneUser = `[{
	"id": 1,
	"name": "Leanne Graham",
	"username": "Bret",
	"email": "Sincere@april.biz",
	"address": {
		"street": "Kulas Light",
		"suite": "Apt. 556",
		"city": "Gwenborough",
		"zipcode": "92998-3874",
		"geo": {"lat": "-37.3159", "lng": "81.1496"}
	},
	"phone": "1-770-736-8031 x56442",
	"website": "hildegard.org",
	"company": {"name": "Romaguera-Crona", "catchPhrase": "x", "bs": "y"}
}]`

// testConfig points the run at url and a SQLite file in a temp dir.
func testConfig(t *testing.T, url string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fake_users.db")

	oldCfg := cfg
	cfg = &config.Config{
		Source: config.SourceConfig{URL: url, TimeoutSecs: 5, MaxAttempts: 1},
		Store:  config.StoreConfig{Driver: "sqlite", DatabaseURL: dbPath},
	}
	t.Cleanup(func() { cfg = oldCfg })
	return dbPath
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "json-to-relational", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["schema"], "expected subcommand %q not found", "schema")
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
store:
  driver: sqlite
log:
  level: info
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir)

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "fake_users.db", cfg.Store.DatabaseURL)
}

func TestRootCmd_PersistentPreRunE_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir)

	t.Setenv("J2R_STORE_DRIVER", "mysql")

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestRootCmd_RunE_LoadsUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(oneUser))
	}))
	defer srv.Close()

	dbPath := testConfig(t, srv.URL)
	rootCmd.SetContext(context.Background())

	require.NoError(t, rootCmd.RunE(rootCmd, nil))

	conn, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer conn.Close()

	var username string
	var userID int64
	require.NoError(t, conn.QueryRow(`SELECT u.username, c.user_id FROM "user" u JOIN "company" c ON c.user_id = u.id`).Scan(&username, &userID))
	assert.Equal(t, "Bret", username)
	assert.Equal(t, int64(1), userID)
}

func TestRootCmd_RunE_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dbPath := testConfig(t, srv.URL)
	rootCmd.SetContext(context.Background())

	err := rootCmd.RunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, errorMessage(err), "fetch failed")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestErrorMessage(t *testing.T) {
	err := eris.Wrap(&fetcher.ParseError{URL: "u", Err: eris.New("bad json")}, "pipeline: fetch")
	assert.Contains(t, errorMessage(err), "parse failed: ")
	assert.Contains(t, errorMessage(eris.New("boom")), "error: boom")
}

func TestSchemaCommand_Flags(t *testing.T) {
	flag := schemaCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "schema command should have --format flag")
	assert.Equal(t, "sql", flag.DefValue)
}

func TestWriteSchema_SQL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSchema(&buf, "postgres", "sql"))

	out := buf.String()
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "user"`)
	assert.Contains(t, out, `"address_id" BIGINT NOT NULL UNIQUE REFERENCES "address" ("id")`)
	assert.Equal(t, 4, bytes.Count(buf.Bytes(), []byte(");\n\n")))
}

func TestWriteSchema_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSchema(&buf, "sqlite", "yaml"))

	var tables []model.Table
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &tables))
	require.Len(t, tables, 4)
	assert.Equal(t, "user", tables[0].Name)
	assert.Equal(t, "geo", tables[2].JSONKey)
	require.NotNil(t, tables[2].ForeignKey)
	assert.Equal(t, "address_id", tables[2].ForeignKey.Column)
}

func TestWriteSchema_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeSchema(&buf, "mysql", "sql"))
	assert.Error(t, writeSchema(&buf, "sqlite", "toml"))
}
