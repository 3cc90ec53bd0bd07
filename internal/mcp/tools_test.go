package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/export"
)

func makeTestSource() *Source {
	// Dump order is newest-first, like the service's listing
	return &Source{
		Path: "/tmp/dump.json",
		Records: []*diary.Record{
			{ID: "p1aa", LocalTime: "2024-02-15 08:00", Title: "Morning walk", Body: "Cold but clear."},
			{ID: "m7q2", LocalTime: "2024-01-01 18:40", Body: "Evening note.", Location: "Shanghai"},
			{ID: "k3x9", LocalTime: "2024-01-01 09:15", Title: "New year", Body: "First entry of the year."},
			{ID: "old1", Title: "No date on this one"},
		},
	}
}

func TestLoadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	records := []*diary.Record{{ID: "k3x9", Title: "New year"}}
	if err := export.WriteJSONDump(path, records); err != nil {
		t.Fatalf("writing dump: %v", err)
	}

	source, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if source.Path != path || len(source.Records) != 1 {
		t.Errorf("unexpected source: %+v", source)
	}

	if _, err := LoadSource(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing dump")
	}
}

func TestHandleQuery(t *testing.T) {
	source := makeTestSource()
	handler := handleQuery(source)

	tests := []struct {
		name    string
		input   QueryInput
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "no filters returns everything",
			input:   QueryInput{},
			wantIDs: []string{"p1aa", "m7q2", "k3x9", "old1"},
		},
		{
			name:    "day range drops undated records",
			input:   QueryInput{From: "2024-01-01", To: "2024-01-31"},
			wantIDs: []string{"m7q2", "k3x9"},
		},
		{
			name:    "contains matches location",
			input:   QueryInput{Contains: "shanghai"},
			wantIDs: []string{"m7q2"},
		},
		{
			name:    "last takes the tail",
			input:   QueryInput{Last: 2},
			wantIDs: []string{"k3x9", "old1"},
		},
		{
			name:    "bad day is an error",
			input:   QueryInput{From: "yesterday"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := handler(context.Background(), nil, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("handler: %v", err)
			}
			if out.Count != len(tt.wantIDs) {
				t.Fatalf("count = %d, want %d", out.Count, len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if out.Entries[i].ID != want {
					t.Errorf("entries[%d].ID = %q, want %q", i, out.Entries[i].ID, want)
				}
			}
		})
	}
}

func TestHandleShow(t *testing.T) {
	source := makeTestSource()
	handler := handleShow(source)

	_, out, err := handler(context.Background(), nil, ShowInput{ID: "k3x9"})
	if err != nil {
		t.Fatalf("show by ID: %v", err)
	}
	if out.Entry.Title != "New year" {
		t.Errorf("entry = %+v", out.Entry)
	}

	_, out, err = handler(context.Background(), nil, ShowInput{Latest: true})
	if err != nil {
		t.Fatalf("show latest: %v", err)
	}
	if out.Entry.ID != "p1aa" {
		t.Errorf("latest = %q, want the first dump record", out.Entry.ID)
	}

	if _, _, err := handler(context.Background(), nil, ShowInput{}); err == nil {
		t.Error("expected an error without id or latest")
	}
	if _, _, err := handler(context.Background(), nil, ShowInput{ID: "nope"}); err == nil {
		t.Error("expected an error for an unknown ID")
	}
}

func TestHandleShowLatestEmptyDump(t *testing.T) {
	handler := handleShow(&Source{Path: "empty.json"})
	if _, _, err := handler(context.Background(), nil, ShowInput{Latest: true}); err == nil {
		t.Error("expected an error for an empty dump")
	}
}

func TestHandleStats(t *testing.T) {
	source := makeTestSource()
	handler := handleStats(source)

	_, out, err := handler(context.Background(), nil, StatsInput{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if out.Total != 4 || out.Days != 2 || out.Undated != 1 {
		t.Errorf("stats = %+v, want total 4, days 2, undated 1", out)
	}
	if out.FirstDay != "2024-01-01" || out.LastDay != "2024-02-15" {
		t.Errorf("range = %s..%s", out.FirstDay, out.LastDay)
	}
	if out.Path != source.Path {
		t.Errorf("path = %q", out.Path)
	}
	if len(out.PerDay) != 2 || out.PerDay[0] != (DayCount{"2024-01-01", 2}) {
		t.Errorf("per-day counts = %+v", out.PerDay)
	}
}
