package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/extract"
	"github.com/fwojciec/harvest/gemini"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/pipeline"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	JobService       harvest.JobService
	ResultService    harvest.ResultService
	PageErrorService harvest.PageErrorService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'harvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cmd == "run" && cli.Run.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set HARVEST_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.JobService = sqlite.NewJobService(m.DB)
	m.ResultService = sqlite.NewResultService(m.DB)
	m.PageErrorService = sqlite.NewPageErrorService(m.DB)
	deps.DB = m.DB
	deps.Jobs = m.JobService
	deps.Results = m.ResultService
	deps.PageErrors = m.PageErrorService

	if cmd == "run" {
		runner, err := m.buildRunner(ctx, cli, deps, stderr)
		if err != nil {
			return err
		}
		deps.Runner = runner
	}

	return kongCtx.Run(deps)
}

// buildRunner wires the extraction pipeline for the run command.
func (m *Main) buildRunner(ctx context.Context, cli *CLI, deps *Dependencies, stderr io.Writer) (*pipeline.Runner, error) {
	client := &http.Client{Timeout: harvesthttp.DefaultFetchTimeout}

	var fetcher harvest.PageFetcher = harvesthttp.NewFetcher(harvesthttp.WithClient(client))
	fetcher = harvestslog.NewLoggingPageFetcher(fetcher, deps.Logger)

	var expander harvest.URLExpander = harvesthttp.NewExpander(client)
	expander = harvestslog.NewLoggingURLExpander(expander, deps.Logger)

	runner := &pipeline.Runner{
		Fetcher:     fetcher,
		Expander:    expander,
		Jobs:        deps.Jobs,
		Results:     deps.Results,
		PageErrors:  deps.PageErrors,
		RateLimiter: pipeline.NewDomainLimiter(1.0),
		Logger:      deps.Logger,
	}

	if cli.Run.NoLLM {
		return runner, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY not set; running with rule-based extraction only")
		return runner, nil
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	var completions harvest.CompletionClient = gemini.NewClient(genaiClient)
	completions = harvestslog.NewLoggingCompletionClient(completions, deps.Logger)

	runner.LLM = &extract.LLMExtractor{
		Client: completions,
		Logger: deps.Logger,
	}
	return runner, nil
}

func defaultDBPath() string {
	if path := os.Getenv("HARVEST_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "harvest.db"
	}
	dir := filepath.Join(home, ".harvest")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "harvest.db")
}
