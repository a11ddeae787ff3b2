package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/abandoned-sites/internal/services"
	"github.com/jwebster45206/abandoned-sites/internal/storage"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	out, err := run(t, "list")
	require.NoError(t, err)
	for _, loc := range catalog.MustDefaultSeed() {
		assert.Contains(t, out, loc.Title)
	}
	assert.Contains(t, out, "4.5 (127 votes)")
	assert.Contains(t, out, "unrated")
}

func TestList_Filtered(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "difficulty",
			args:    []string{"list", "--difficulty", "easy"},
			want:    []string{"Wonder Island", "Workers' Settlement"},
			notWant: []string{"Red October", "Psychiatric", "Duga-North"},
		},
		{
			name:    "type",
			args:    []string{"list", "-t", "MILITARY"},
			want:    []string{"Duga-North"},
			notWant: []string{"Red October", "Wonder Island"},
		},
		{
			name: "no match",
			args: []string{"list", "-d", "hard", "-t", "amusement"},
			want: []string{"No locations found. Try changing the filters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestList_UnknownFilter(t *testing.T) {
	_, err := run(t, "list", "--difficulty", "insane")
	assert.ErrorContains(t, err, `unknown difficulty "insane"`)

	_, err = run(t, "list", "--type", "castle")
	assert.ErrorContains(t, err, `unknown type "castle"`)
}

func TestList_InvalidBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := run(t, "list")
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestList_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", mr.Addr())
	t.Setenv("SESSION_TTL", "30m")

	out, err := run(t, "list", "--type", "hospital")
	require.NoError(t, err)
	assert.Contains(t, out, "Psychiatric Hospital No. 5")
	assert.True(t, mr.Exists("sites:order"), "first run seeds redis")

	// A second run reuses the seeded keys.
	mr.Del("sites:location:2")
	out, err = run(t, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Psychiatric Hospital No. 5")
	assert.Contains(t, out, "Red October Steelworks")
}

func TestShow(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	out, err := run(t, "show", "1", "--style", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Red October Steelworks")
	assert.Contains(t, out, "History")
	assert.Contains(t, out, "Stories (2)")
	assert.Contains(t, out, "Stalker_777")
}

func TestShow_Errors(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	_, err := run(t, "show", "404", "--style", "notty")
	assert.ErrorIs(t, err, storage.ErrLocationNotFound)

	_, err = run(t, "show", "abc")
	assert.ErrorContains(t, err, `invalid location id "abc"`)
}

func TestHealth(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	out, err := run(t, "health")
	require.NoError(t, err)

	var report services.HealthReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, services.StatusHealthy, report.Status)
	assert.Equal(t, 5, report.Locations)
}

func TestCatalogFlag(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`locations:
  - id: 7
    title: Lighthouse Keeper's Cottage
    description: Salt-eaten walls on a cliff.
    history: Lit until **1979**.
    difficulty: easy
    danger: 2
    type: residential
    year: "1979"
`), 0o644))

	out, err := run(t, "--catalog", path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lighthouse Keeper's Cottage")
	assert.NotContains(t, out, "Red October")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`locations:
  - id: 1
    title: Water Tower
    difficulty: medium
    danger: 5
    type: industrial
    rating: 4.0
    ratings_count: 3
`), 0o644))

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog is valid: 1 locations")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`locations:
  - id: 1
    title: Water Tower
    difficulty: medium
    type: industrial
  - id: 1
    title: Boiler House
    difficulty: medium
    type: industrial
`), 0o644))

	_, err = run(t, "validate", bad)
	assert.ErrorContains(t, err, "duplicate id")

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte(`locations:
  - id: 1
    title: Water Tower
    difficulty: medium
    type: industrial
    haunted: true
`), 0o644))

	_, err = run(t, "validate", unknown)
	assert.ErrorContains(t, err, "haunted")
}
