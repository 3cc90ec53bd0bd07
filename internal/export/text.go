package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/output"
)

const ruleWidth = 80

// WriteTextDump writes the human-readable text rendition: a header with the
// total count, then one block per record. An empty slice writes only the
// header.
func WriteTextDump(path string, records []*diary.Record) error {
	var b strings.Builder
	b.WriteString("iCity Diary Export (text)\n")
	fmt.Fprintf(&b, "Total entries: %d\n", len(records))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	for i, record := range records {
		fmt.Fprintf(&b, "#%d  ID: %s\n", i+1, record.ID)
		if dt := displayDateTime(record); dt != "" {
			fmt.Fprintf(&b, "DateTime: %s\n", dt)
		}
		if record.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", record.Title)
		}
		if record.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", record.Location)
		}
		fmt.Fprintf(&b, "URL: %s\n", record.SourceURL)
		b.WriteString("Text:\n")
		b.WriteString(strings.TrimSpace(record.Body) + "\n")
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return output.NewIOError("writing "+path, err)
	}
	return nil
}

// displayDateTime picks the best human-readable timestamp: the local
// rendering when present, otherwise the day and time labels joined.
func displayDateTime(record *diary.Record) string {
	if record.LocalTime != "" {
		return record.LocalTime
	}
	return strings.TrimSpace(record.DateLabel + " " + record.TimeLabel)
}
