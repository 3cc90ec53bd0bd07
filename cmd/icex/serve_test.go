package main

import (
	"strings"
	"testing"
)

func TestServeRequiresDump(t *testing.T) {
	isolateEnv(t)

	_, err := runCommand(t, "", "serve")
	if err == nil {
		t.Fatal("expected an error without --dump")
	}
	if !strings.Contains(err.Error(), "dump") {
		t.Errorf("error should mention the dump flag: %v", err)
	}
}

func TestServeMissingDumpFile(t *testing.T) {
	isolateEnv(t)

	_, err := runCommand(t, "", "serve", "--dump", "/nonexistent/dump.json")
	if err == nil {
		t.Fatal("expected an error for a missing dump file")
	}
}
