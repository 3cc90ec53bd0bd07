// Package export writes the three export artifacts: the structured JSON
// dump, the human-readable text dump, and the per-day Markdown tree.
// All writers are deterministic; running them twice over the same records
// produces byte-identical output.
package export

import (
	"encoding/json"
	"os"

	"github.com/gorewood/icex/internal/diary"
	"github.com/gorewood/icex/internal/output"
)

// WriteJSONDump writes the full record slice to path as an indented JSON
// array. HTML escaping is off so URLs and CJK text stay readable. An empty
// slice writes a literal [].
func WriteJSONDump(path string, records []*diary.Record) error {
	if records == nil {
		records = []*diary.Record{}
	}

	file, err := os.Create(path)
	if err != nil {
		return output.NewIOError("creating "+path, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		file.Close()
		return output.NewIOError("writing "+path, err)
	}

	if err := file.Close(); err != nil {
		return output.NewIOError("writing "+path, err)
	}
	return nil
}
