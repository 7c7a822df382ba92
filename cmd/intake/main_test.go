package main

import (
	"os"
	"path/filepath"
	"testing"

	"intake/internal/testsupport"
)

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath)

	out, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "watch_root")
	requireContains(t, out, env.watchRoot)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists without --overwrite")
	}
}

func TestProcessCommandNormalizesArchive(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.baseDir, "report.zip")
	testsupport.WriteZip(t, source, map[string][]byte{
		"docs/10-K.pdf": []byte("annual"),
	})

	out, err := runCLI(t, []string{"process", source, "--entity", "AAPL"}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "archive_single")

	dest := filepath.Join(env.watchRoot, "AAPL", "unzipped", "10-K.pdf")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected flattened output at %s: %v", dest, err)
	}
}

func TestProcessCommandRequiresDestination(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.baseDir, "plain.txt")
	testsupport.WriteFile(t, source, []byte("x"))

	if _, err := runCLI(t, []string{"process", source}, env.configPath); err == nil {
		t.Fatal("expected error without --entity or --dest")
	}
	if _, err := runCLI(t, []string{"process", source, "--entity", "A", "--dest", env.baseDir}, env.configPath); err == nil {
		t.Fatal("expected error when both --entity and --dest are set")
	}
}

func TestStatusCommandListsEntities(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.MkdirAll(filepath.Join(env.watchRoot, "MSFT"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Watch root")
	requireContains(t, out, "MSFT")
}

func TestHistoryCommandEmptyCatalog(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No normalization history")
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	requireContains(t, out, "only")
}
