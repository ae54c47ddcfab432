package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the jobs command.
func (c *JobsCmd) Run(deps *Dependencies) error {
	filter := harvest.JobFilter{Limit: c.Limit}
	if c.Status != "" {
		status := harvest.JobStatus(c.Status)
		switch status {
		case harvest.JobPending, harvest.JobRunning, harvest.JobCompleted, harvest.JobFailed:
		default:
			fmt.Fprintf(deps.Stderr, "error: unknown status %q\n", c.Status)
			return harvest.Errorf(harvest.EINVALID, "unknown status %q", c.Status)
		}
		filter.Status = &status
	}

	jobs, err := deps.Jobs.FindJobs(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(deps.Stdout, "No jobs found. Use 'harvest run' to start one.")
		return nil
	}

	for _, j := range jobs {
		fmt.Fprintf(deps.Stdout, "%s  %-9s  %d/%d ok, %d failed  %s\n",
			j.ID, j.Status, j.Totals.Succeeded, j.Totals.Total, j.Totals.Failed,
			j.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}
