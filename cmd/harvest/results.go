package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the results command.
func (c *ResultsCmd) Run(deps *Dependencies) error {
	// Verify the job exists so a bad ID is distinguishable from a job with
	// no results.
	if _, err := deps.Jobs.FindJobByID(deps.Ctx, c.JobID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if c.Errors {
		return c.showErrors(deps)
	}

	results, err := deps.Results.FindResults(deps.Ctx, harvest.ResultFilter{JobID: &c.JobID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results for this job.")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %d fields  %s\n",
			r.URL, r.Source, fieldCount(r.Fields), r.CreatedAt.Format("2006-01-02 15:04"))
		if c.Full {
			out, err := json.MarshalIndent(r.Fields, "  ", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "  %s\n", out)
			if r.Explanation != "" {
				fmt.Fprintf(deps.Stdout, "  %s\n", r.Explanation)
			}
		}
	}

	return nil
}

// showErrors prints the per-URL error log for the job.
func (c *ResultsCmd) showErrors(deps *Dependencies) error {
	errs, err := deps.PageErrors.FindPageErrors(deps.Ctx, c.JobID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(errs) == 0 {
		fmt.Fprintln(deps.Stdout, "No errors recorded for this job.")
		return nil
	}

	for _, e := range errs {
		fmt.Fprintf(deps.Stdout, "%s  [%s]  %s\n", e.URL, e.Stage, e.Message)
	}

	return nil
}

// fieldCount counts extracted fields, excluding the provenance sub-map.
func fieldCount(fields harvest.FieldMap) int {
	n := len(fields)
	if _, ok := fields[harvest.SourcesKey]; ok {
		n--
	}
	return n
}
