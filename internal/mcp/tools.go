package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/icex/internal/diary"
)

// QueryInput is the input for the query tool.
type QueryInput struct {
	Last     int    `json:"last,omitempty"     jsonschema:"return only the last N matches"`
	From     string `json:"from,omitempty"     jsonschema:"keep entries on or after this day (YYYY-MM-DD)"`
	To       string `json:"to,omitempty"       jsonschema:"keep entries on or before this day (YYYY-MM-DD)"`
	Contains string `json:"contains,omitempty" jsonschema:"case-insensitive match over title, text, and location"`
}

// QueryOutput is the output for the query tool.
type QueryOutput struct {
	Count   int             `json:"count"   jsonschema:"number of entries returned"`
	Entries []*diary.Record `json:"entries" jsonschema:"matching diary entries"`
}

func handleQuery(source *Source) mcp.ToolHandlerFor[QueryInput, QueryOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
		from, err := parseDayArg(input.From, "from")
		if err != nil {
			return nil, QueryOutput{}, err
		}
		to, err := parseDayArg(input.To, "to")
		if err != nil {
			return nil, QueryOutput{}, err
		}

		records := diary.FilterByDayRange(source.Records, from, to)
		records = diary.FilterByText(records, input.Contains)
		records = diary.Last(records, input.Last)

		return nil, QueryOutput{Count: len(records), Entries: records}, nil
	}
}

// parseDayArg parses an optional YYYY-MM-DD argument into a day bound.
func parseDayArg(value, name string) (*diary.Day, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s day %q: want YYYY-MM-DD", name, value)
	}
	day := diary.Day{Year: parsed.Year(), Month: int(parsed.Month()), Day: parsed.Day()}
	return &day, nil
}

// ShowInput is the input for the show tool.
type ShowInput struct {
	ID     string `json:"id,omitempty"     jsonschema:"entry ID, the short token from the entry permalink"`
	Latest bool   `json:"latest,omitempty" jsonschema:"return the newest entry instead of looking up an ID"`
}

// ShowOutput is the output for the show tool.
type ShowOutput struct {
	Entry *diary.Record `json:"entry" jsonschema:"the requested diary entry"`
}

func handleShow(source *Source) mcp.ToolHandlerFor[ShowInput, ShowOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ShowInput) (*mcp.CallToolResult, ShowOutput, error) {
		if input.ID == "" && !input.Latest {
			return nil, ShowOutput{}, errors.New("specify id or latest=true")
		}

		if input.Latest {
			if len(source.Records) == 0 {
				return nil, ShowOutput{}, errors.New("the dump has no entries")
			}
			// Dump order is newest-first
			return nil, ShowOutput{Entry: source.Records[0]}, nil
		}

		for _, record := range source.Records {
			if record.ID == input.ID {
				return nil, ShowOutput{Entry: record}, nil
			}
		}
		return nil, ShowOutput{}, fmt.Errorf("no entry with ID %q", input.ID)
	}
}

// StatsInput is the input for the stats tool.
type StatsInput struct{}

// DayCount is one day's entry count.
type DayCount struct {
	Day   string `json:"day"   jsonschema:"diary day (YYYY-MM-DD)"`
	Count int    `json:"count" jsonschema:"entries on that day"`
}

// StatsOutput is the output for the stats tool.
type StatsOutput struct {
	Path     string     `json:"path"                jsonschema:"the dump file the server answers from"`
	Total    int        `json:"total"               jsonschema:"total number of entries"`
	Days     int        `json:"days"                jsonschema:"number of distinct diary days"`
	FirstDay string     `json:"first_day,omitempty" jsonschema:"earliest diary day (YYYY-MM-DD)"`
	LastDay  string     `json:"last_day,omitempty"  jsonschema:"latest diary day (YYYY-MM-DD)"`
	Undated  int        `json:"undated"             jsonschema:"entries whose date could not be derived"`
	PerDay   []DayCount `json:"per_day,omitempty"   jsonschema:"entry counts per day, ascending"`
}

func handleStats(source *Source) mcp.ToolHandlerFor[StatsInput, StatsOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
		groups := diary.GroupByDay(source.Records)

		out := StatsOutput{
			Path:  source.Path,
			Total: len(source.Records),
			Days:  len(groups),
		}

		dated := 0
		for _, group := range groups {
			dated += len(group.Records)
			out.PerDay = append(out.PerDay, DayCount{Day: group.Day.String(), Count: len(group.Records)})
		}
		out.Undated = out.Total - dated

		if len(groups) > 0 {
			out.FirstDay = groups[0].Day.String()
			out.LastDay = groups[len(groups)-1].Day.String()
		}

		return nil, out, nil
	}
}
