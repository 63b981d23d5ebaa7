package batch

import (
	"encoding/json"
	"os"
)

// Summary counts the outcomes of a run.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Report is the JSON document written by WriteReport.
type Report struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// Summarize counts passed and failed results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// WriteReport writes the results and their summary as JSON to path.
func WriteReport(path string, results []Result) error {
	report := Report{
		Summary: Summarize(results),
		Results: results,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
