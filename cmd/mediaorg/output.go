package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"

	"mediaorg/internal/pipeline"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type importResultJSON struct {
	Source      string `json:"source"`
	Outcome     string `json:"outcome"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

type importSummaryJSON struct {
	Results []importResultJSON `json:"results"`
	Counts  map[string]int     `json:"counts"`
	Elapsed string             `json:"elapsed"`
}

func importJSON(summary pipeline.Summary) importSummaryJSON {
	payload := importSummaryJSON{
		Results: make([]importResultJSON, 0, len(summary.Results)),
		Counts:  make(map[string]int, len(summary.Counts)),
		Elapsed: summary.Elapsed.Round(time.Millisecond).String(),
	}
	for _, r := range summary.Results {
		entry := importResultJSON{Source: r.Source, Outcome: string(r.Outcome), Destination: r.Destination}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		payload.Results = append(payload.Results, entry)
	}
	for outcome, n := range summary.Counts {
		payload.Counts[string(outcome)] = n
	}
	return payload
}

var outcomeOrder = []pipeline.Outcome{
	pipeline.OutcomeImported,
	pipeline.OutcomeUnchanged,
	pipeline.OutcomeDuplicate,
	pipeline.OutcomeExcluded,
	pipeline.OutcomeInvalid,
	pipeline.OutcomeRejected,
	pipeline.OutcomeFailed,
}

func renderImportSummary(out io.Writer, summary pipeline.Summary, colorize bool) {
	if len(summary.Results) == 0 {
		fmt.Fprintln(out, "No media files found")
		return
	}
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		target := r.Destination
		if target == "" && r.Err != nil {
			target = r.Err.Error()
		}
		rows = append(rows, []string{r.Source, colorOutcome(r.Outcome, colorize), target})
	}
	fmt.Fprintln(out, renderTable([]string{"Source", "Outcome", "Destination"}, rows, nil))

	counts := make([][]string, 0, len(outcomeOrder))
	for _, outcome := range outcomeOrder {
		if n := summary.Counts[outcome]; n > 0 {
			counts = append(counts, []string{string(outcome), strconv.Itoa(n)})
		}
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Files"}, counts, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "Processed %s in %s\n", plural(len(summary.Results), "file"), summary.Elapsed.Round(time.Millisecond))
}

func colorOutcome(outcome pipeline.Outcome, colorize bool) string {
	label := string(outcome)
	if !colorize {
		return label
	}
	switch outcome {
	case pipeline.OutcomeImported:
		return ansiGreen + label + ansiReset
	case pipeline.OutcomeFailed, pipeline.OutcomeRejected:
		return ansiRed + label + ansiReset
	case pipeline.OutcomeDuplicate, pipeline.OutcomeInvalid:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

// renderLibraryTree draws the destinations of imported files relative to root.
func renderLibraryTree(root string, summary pipeline.Summary) string {
	tree := gotree.New(root)
	dirs := map[string]gotree.Tree{".": tree}
	var dirFor func(rel string) gotree.Tree
	dirFor = func(rel string) gotree.Tree {
		if node, ok := dirs[rel]; ok {
			return node
		}
		node := dirFor(filepath.Dir(rel)).Add(filepath.Base(rel))
		dirs[rel] = node
		return node
	}

	var placed []string
	for _, r := range summary.Results {
		if r.Outcome != pipeline.OutcomeImported {
			continue
		}
		if rel, err := filepath.Rel(root, r.Destination); err == nil {
			placed = append(placed, rel)
		}
	}
	sort.Strings(placed)
	for _, rel := range placed {
		dirFor(filepath.Dir(rel)).Add(filepath.Base(rel))
	}
	return tree.Print()
}
