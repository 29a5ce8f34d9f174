package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baely/caffeine/internal/caffeine"
	cerrors "github.com/baely/caffeine/internal/common/errors"
)

var testNow = time.Date(2025, 3, 14, 13, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "caffeine.toml")
	body := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(dir, "caffeine.db")) + "\"\n\n[decay]\ntimezone = \"UTC\"\n\n[log]\nlevel = \"error\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&app{now: func() time.Time { return testNow }})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "caffeine dev") {
		t.Errorf("output = %q", out)
	}
}

func TestAddAndLevel(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "add", "coffee", "--at", "08:00")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Recorded Coffee: 160 mg at 08:00") {
		t.Errorf("add output = %q", out)
	}

	out, err = run(t, cfg, "level")
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	// five hours after 160 mg
	if !strings.HasPrefix(out, "80 mg at Fri 14 Mar 13:00") {
		t.Errorf("level output = %q", out)
	}

	out, err = run(t, cfg, "level", "--at", "2025-03-14T20:00:00Z")
	if err != nil {
		t.Fatalf("level --at: %v", err)
	}
	if !strings.HasPrefix(out, "0 mg") {
		t.Errorf("level after cutoff = %q", out)
	}
}

func TestAddRawAmount(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "add", "Pre", "workout", "--mg", "150", "--at", "2025-03-14T12:00:00Z")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Recorded Pre workout: 150 mg at 12:00") {
		t.Errorf("add output = %q", out)
	}
}

func TestAddUnknownDrink(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "add", "mocha")
	if !errors.Is(err, cerrors.ErrNotFound) {
		t.Errorf("add mocha err = %v, want ErrNotFound", err)
	}
}

func TestChart(t *testing.T) {
	cfg := testConfig(t)

	if _, err := run(t, cfg, "add", "espresso", "--volume", "30", "--at", "09:00"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := run(t, cfg, "chart")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != caffeine.SamplesPerDay {
		t.Fatalf("got %d lines, want %d", len(lines), caffeine.SamplesPerDay)
	}
	if !strings.HasPrefix(lines[9], "09:00    63 mg |"+strings.Repeat("#", chartWidth)) {
		t.Errorf("peak line = %q", lines[9])
	}
	if !strings.Contains(lines[13], "<- now") {
		t.Errorf("now marker missing from %q", lines[13])
	}
	if !strings.HasPrefix(lines[0], "00:00     0 mg |") {
		t.Errorf("midnight line = %q", lines[0])
	}
}

func TestEventsAndRm(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if !strings.Contains(out, "No drinks recorded yet") {
		t.Errorf("empty events output = %q", out)
	}

	if _, err := run(t, cfg, "add", "tea", "--at", "08:00"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err = run(t, cfg, "events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if !strings.Contains(out, "Tea") || !strings.Contains(out, "5 hours ago") {
		t.Errorf("events output = %q", out)
	}

	id := strings.TrimSuffix(out[strings.LastIndex(out, "(")+1:], ")\n")
	if _, err := run(t, cfg, "rm", id); err != nil {
		t.Fatalf("rm %s: %v", id, err)
	}
	if _, err := run(t, cfg, "rm", id); !errors.Is(err, cerrors.ErrNotFound) {
		t.Errorf("second rm err = %v, want ErrNotFound", err)
	}
}

func TestDrinks(t *testing.T) {
	cfg := testConfig(t)

	if _, err := run(t, cfg, "drinks", "add", "Cold", "Brew", "60"); err != nil {
		t.Fatalf("drinks add: %v", err)
	}
	out, err := run(t, cfg, "drinks")
	if err != nil {
		t.Fatalf("drinks: %v", err)
	}
	if !strings.Contains(out, "Cold Brew") || !strings.Contains(out, "(custom)") {
		t.Errorf("drinks output = %q", out)
	}

	out, err = run(t, cfg, "add", "cold", "brew", "--volume", "300", "--at", "10:00")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "180 mg") {
		t.Errorf("add output = %q", out)
	}

	if _, err := run(t, cfg, "drinks", "rm", "Cold", "Brew"); err != nil {
		t.Fatalf("drinks rm: %v", err)
	}
	if _, err := run(t, cfg, "drinks", "add", "Water", "abc"); err == nil {
		t.Error("expected error for non-numeric caffeine")
	}
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[decay]\nhalf_life_hours = -1\n"), 0644)

	if _, err := run(t, path, "level"); !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("level with bad config err = %v, want ErrInvalidInput", err)
	}
}

func TestAddInfiniteAmount(t *testing.T) {
	cfg := testConfig(t)

	if _, err := run(t, cfg, "add", "Pill", "--mg", "Inf"); !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("add --mg Inf err = %v, want ErrInvalidInput", err)
	}
}

func TestChartOverflowingLevel(t *testing.T) {
	cfg := testConfig(t)

	// each dose is finite but together they overflow at 08:00
	for i := 0; i < 2; i++ {
		if _, err := run(t, cfg, "add", "Huge", "--mg", "1e308", "--at", "08:00"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	out, err := run(t, cfg, "chart")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != caffeine.SamplesPerDay {
		t.Fatalf("got %d lines, want %d", len(lines), caffeine.SamplesPerDay)
	}
	if strings.Contains(lines[8], "#") {
		t.Errorf("overflowed hour drew a bar: %q", lines[8])
	}
	if !strings.Contains(lines[9], strings.Repeat("#", chartWidth)) {
		t.Errorf("peak line = %q", lines[9])
	}
}
