package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the run command: it creates a job and processes it to
// completion.
func (c *RunCmd) Run(deps *Dependencies) error {
	job := &harvest.Job{
		TargetURLs:   c.URLs,
		Instructions: c.Instructions,
		Status:       harvest.JobPending,
		Settings: harvest.JobSettings{
			MaxPages:         c.MaxPages,
			FollowPagination: c.Follow,
		},
	}

	if err := deps.Jobs.CreateJob(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Job %s started (%d URLs)\n", job.ID, len(job.TargetURLs))

	if err := deps.Runner.RunJob(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Job %s %s: %d processed, %d succeeded, %d failed\n",
		job.ID, job.Status, job.Totals.Processed, job.Totals.Succeeded, job.Totals.Failed)

	if job.Totals.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "Run 'harvest results %s --errors' to see what failed\n", job.ID)
	}

	return nil
}
