package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/plugsunset/internal/config"
	"github.com/jmylchreest/plugsunset/internal/events"
	"github.com/jmylchreest/plugsunset/internal/http/handlers"
	"github.com/jmylchreest/plugsunset/internal/schedule"
	"github.com/jmylchreest/plugsunset/internal/server"
	"github.com/jmylchreest/plugsunset/internal/status"
	"github.com/jmylchreest/plugsunset/pkg/kasa"
)

const londonConfig = `
device:
  host: 127.0.0.1
location:
  latitude: 51.5
  longitude: 0
  timezone: UTC
schedule:
  off_time: "00:05"
  on_offset_minutes: -5
logging:
  level: error
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "plugsunset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(handlers.BuildInfo{Version: "1.2.3", Commit: "abc123", BuildDate: "2024-01-15"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Commit:     abc123")
	assert.Contains(t, out, "Build Date: 2024-01-15")
}

func TestConfigShow(t *testing.T) {
	path := writeConfig(t, londonConfig)

	out, err := execute(t, "--config", path, "--alias", "Porch", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "alias: Porch")
	assert.Contains(t, out, "host: 127.0.0.1")
	assert.Contains(t, out, "latitude: 51.5")
	assert.Contains(t, out, `off_time: "00:05"`)
}

func TestConfigInvalid(t *testing.T) {
	path := writeConfig(t, "location:\n  latitude: 123\n")
	_, err := execute(t, "--config", path, "config", "show")
	assert.Error(t, err)
}

func TestNextParseable(t *testing.T) {
	path := writeConfig(t, londonConfig)

	out, err := execute(t, "--config", path, "next", "--parseable", "--at", "2024-01-15 12:00", "-n", "4")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `now="2024-01-15T12:00:00Z" state=OFF`, lines[0])

	assert.True(t, strings.HasPrefix(lines[1], `state=ON at="2024-01-15T16:`), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `state=OFF at="2024-01-16T00:05:00Z"`), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], `state=ON at="2024-01-16T16:`), lines[3])
	assert.True(t, strings.HasPrefix(lines[4], `state=OFF at="2024-01-17T00:05:00Z"`), lines[4])
}

func TestNextRejectsBadInput(t *testing.T) {
	path := writeConfig(t, londonConfig)

	_, err := execute(t, "--config", path, "next", "--at", "tomorrow")
	assert.Error(t, err)

	_, err = execute(t, "--config", path, "next", "--count", "0")
	assert.Error(t, err)
}

func TestNextTable(t *testing.T) {
	path := writeConfig(t, londonConfig)

	out, err := execute(t, "--config", path, "next", "--at", "2024-01-15 20:00", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "plug should be")
	assert.Contains(t, out, "Mon 2024-01-15 20:00 UTC")
	assert.Contains(t, out, "Tue 2024-01-16 00:05")
}

func TestPlanTransitionsAlternate(t *testing.T) {
	path := writeConfig(t, londonConfig)
	root := NewRootCommand(handlers.BuildInfo{})
	root.SetArgs([]string{"--config", path, "config", "show"})
	root.SetOut(&bytes.Buffer{})
	require.NoError(t, root.ExecuteContext(context.Background()))

	show, _, err := root.Find([]string{"config", "show"})
	require.NoError(t, err)
	a := getApp(show)

	start := time.Date(2024, time.June, 21, 9, 0, 0, 0, time.UTC)
	initial, plan, err := planTransitions(a, start, 6)
	require.NoError(t, err)
	assert.Equal(t, schedule.Off, initial)
	require.Len(t, plan, 6)

	prev := start
	state := initial
	for _, tr := range plan {
		assert.Equal(t, state.Toggle(), tr.State)
		assert.True(t, tr.At.After(prev) || tr.At.Equal(prev))
		assert.Less(t, tr.At.Sub(prev), 24*time.Hour)
		prev, state = tr.At, tr.State
	}
}

func TestPrintDevices(t *testing.T) {
	root := NewRootCommand(handlers.BuildInfo{})
	var out bytes.Buffer
	root.SetOut(&out)

	found := map[string]kasa.Device{
		"192.168.0.21": {Host: "192.168.0.21", Alias: "Plug_8714", Model: "EP10(US)", On: true},
		"192.168.0.20": {Host: "192.168.0.20", Alias: "Kitchen", Model: "HS103(US)"},
	}
	require.NoError(t, printDevices(root, found, true))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `alias="Kitchen" host="192.168.0.20" model="HS103(US)" mac="" deviceid="" on=false`, lines[0])
	assert.Contains(t, lines[1], `alias="Plug_8714"`)

	out.Reset()
	require.NoError(t, printDevices(root, nil, false))
	assert.Equal(t, "No plugs found\n", out.String())
}

func TestOpenAPICommand(t *testing.T) {
	out, err := execute(t, "openapi", "--base-url", "http://localhost:8080")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/status")
	assert.NotContains(t, paths, "/healthz")

	file := filepath.Join(t.TempDir(), "openapi.yaml")
	_, err = execute(t, "openapi", "--yaml", "-o", file)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/api/v1/version")
}

func TestStatusQueriesDaemon(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.NewBus()
	tracker := status.NewTracker("Porch", time.Now(), logger)
	tracker.Attach(bus)
	next := time.Date(2024, time.January, 15, 16, 0, 0, 0, time.UTC)
	bus.Publish(events.NewEvent(events.PlugStateApplied, events.StateApplied{Host: "127.0.0.1", State: "OFF"}))
	bus.Publish(events.NewEvent(events.TransitionScheduled, events.Scheduled{State: "ON", At: next}))

	srv := server.New(logger, config.APIConfig{}, tracker, nil, handlers.BuildInfo{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	path := writeConfig(t, londonConfig)
	out, err := execute(t, "--config", path, "status", "--api", ts.URL, "-p")
	require.NoError(t, err)
	assert.Equal(t, `alias="Porch" host="127.0.0.1" state=OFF relay= next_state=ON next_at="2024-01-15T16:00:00Z" failures=0 fallback=false`,
		strings.TrimSpace(out))

	out, err = execute(t, "--config", path, "status", "--api", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Porch")
	assert.Contains(t, out, "2024-01-15 16:00:00")
}

func TestStatusNeedsAddress(t *testing.T) {
	path := writeConfig(t, londonConfig)
	_, err := execute(t, "--config", path, "status")
	assert.ErrorContains(t, err, "no API address")
}
