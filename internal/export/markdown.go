package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/output"
)

// WriteMarkdownTree writes one Markdown file per calendar day under
// root/YYYY/MM/YYYY-MM-DD.md and returns how many files it wrote. Any
// existing tree at root is removed first, so the tree always mirrors the
// records exactly. Records without a derivable date are skipped; when
// nothing is bucketable no directory is created at all.
func WriteMarkdownTree(records []*diary.Record, root string) (int, error) {
	if err := os.RemoveAll(root); err != nil {
		return 0, output.NewIOError("clearing "+root, err)
	}

	groups := diary.GroupByDay(records)
	if len(groups) == 0 {
		return 0, nil
	}

	written := 0
	for _, group := range groups {
		dir := filepath.Join(root,
			fmt.Sprintf("%04d", group.Day.Year),
			fmt.Sprintf("%02d", group.Day.Month))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, output.NewIOError("creating "+dir, err)
		}

		path := filepath.Join(dir, group.Day.String()+".md")
		if err := os.WriteFile(path, []byte(FormatDayMarkdown(group)), 0o600); err != nil {
			return written, output.NewIOError("writing "+path, err)
		}
		written++
	}
	return written, nil
}

// FormatDayMarkdown renders one day's records as a Markdown document:
// a date heading, an entry-count blockquote, then a section per record
// separated by horizontal rules.
func FormatDayMarkdown(group diary.DayGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", group.Day)
	fmt.Fprintf(&b, "> %d entries\n\n", len(group.Records))

	for i, record := range group.Records {
		_, clock, _ := record.Day()
		b.WriteString(formatEntry(record, clock))
		if i < len(group.Records)-1 {
			b.WriteString("---\n\n")
		}
	}
	return b.String()
}

func formatEntry(record *diary.Record, clock string) string {
	var b strings.Builder
	if record.Title != "" {
		fmt.Fprintf(&b, "## %s - %s\n\n", clock, record.Title)
	} else {
		fmt.Fprintf(&b, "## %s\n\n", clock)
	}

	fmt.Fprintf(&b, "- ID: `%s`\n", record.ID)
	if record.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", record.Location)
	}
	fmt.Fprintf(&b, "- Link: %s\n\n", record.SourceURL)

	b.WriteString(strings.TrimSpace(record.Body))
	b.WriteString("\n")
	return b.String()
}
