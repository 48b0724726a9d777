package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIWorkflow(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "adventures.json")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SIDEQUEST_RECOMMEND_MODEL_PATH", filepath.Join(dir, "model.gob.gz"))
	t.Setenv("SIDEQUEST_LOG_LEVEL", "error")

	out, err := runCLI(t, "--data", data, "log", "Hiking", "Amit", "Rahul", "--date", "2024-05-01")
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if !strings.Contains(out, "Adventure 'Hiking' logged for 2024-05-01!") {
		t.Errorf("Unexpected log output: %q", out)
	}

	if _, err := runCLI(t, "--data", data, "log", "Skydiving", "Amit", "Rahul", "--date", "2024-05-01"); err == nil {
		t.Error("Expected error for unknown category")
	}

	out, err = runCLI(t, "--data", data, "buddies", "Amit")
	if err != nil {
		t.Fatalf("buddies failed: %v", err)
	}
	if !strings.Contains(out, "Rahul") {
		t.Errorf("Unexpected buddies output: %q", out)
	}

	out, err = runCLI(t, "--data", data, "history", "2024-05-01")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "Amit and Rahul went for a 'Hiking' 1 times.") {
		t.Errorf("Unexpected history output: %q", out)
	}

	out, err = runCLI(t, "--data", data, "recommend", "Nobody")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !strings.Contains(out, "No data available") {
		t.Errorf("Unexpected recommend output: %q", out)
	}

	out, err = runCLI(t, "--data", data, "recommend", "Amit-Rahul")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !strings.Contains(out, "Recommended activities for Amit-Rahul: Hiking") {
		t.Errorf("Unexpected recommend output: %q", out)
	}
}

func TestCLIRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	_, err := runCLI(t, "--backend", "postgres", "--data", filepath.Join(t.TempDir(), "x"), "categories")
	if err == nil {
		t.Error("Expected configuration error for unknown backend")
	}
	backendFlag = ""
}
