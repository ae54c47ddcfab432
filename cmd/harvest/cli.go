package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/pipeline"
	"github.com/fwojciec/harvest/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	DB         *sqlite.DB
	Jobs       harvest.JobService
	Results    harvest.ResultService
	PageErrors harvest.PageErrorService
	Runner     *pipeline.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run     RunCmd     `cmd:"" help:"Run an extraction job over one or more URLs"`
	Jobs    JobsCmd    `cmd:"" help:"List extraction jobs"`
	Results ResultsCmd `cmd:"" help:"Show results for a job"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a job and its results"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URLs         []string `arg:"" help:"Target URLs to extract from"`
	Instructions string   `short:"i" help:"Natural-language extraction instructions"`
	MaxPages     int      `short:"m" default:"5" help:"Pagination/sitemap expansion limit per URL"`
	Follow       bool     `short:"f" help:"Follow pagination and sitemap links"`
	NoLLM        bool     `name:"no-llm" help:"Disable language-model extraction passes"`
	Verbose      bool     `short:"v" help:"Enable debug logging"`
}

// JobsCmd is the "jobs" subcommand.
type JobsCmd struct {
	Status string `short:"s" help:"Filter by status (pending, running, completed, failed)"`
	Limit  int    `default:"20" help:"Maximum number of jobs to show"`
}

// ResultsCmd is the "results" subcommand.
type ResultsCmd struct {
	JobID  string `arg:"" help:"Job ID"`
	Full   bool   `help:"Show full extracted fields as JSON"`
	Errors bool   `help:"Show per-URL error log instead of results"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	JobID string `arg:"" help:"Job ID"`
	Force bool   `help:"Confirm deletion"`
}
