package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorewood/icex/internal/diary"
)

func TestFetchTable(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)

	out, err := runCommand(t, "",
		"fetch",
		"--username", "alice",
		"--no-interactive",
		"--server", server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	wantContains := []string{
		"DATE", "TIME", "TITLE",
		"2024-01-01", "09:15", "New year", "Hangzhou", "k3x9",
		"2024-02-15", "Morning walk",
	}
	for _, want := range wantContains {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFetchJSON(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)

	out, err := runCommand(t, "",
		"fetch", "--json",
		"--username", "alice",
		"--server", server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var records []*diary.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(records) != 3 {
		t.Errorf("len = %d, want 3", len(records))
	}
}

func TestFetchLast(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ICITY_PASSWORD", "hunter2")
	server := newStubService(t)

	out, err := runCommand(t, "",
		"fetch", "--json",
		"--username", "alice",
		"--last", "1",
		"--server", server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	var records []*diary.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(records) != 1 || records[0].ID != "p1aa" {
		t.Errorf("records = %+v, want just the final entry", records)
	}
}
