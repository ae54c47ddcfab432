// Package pipeline provides job orchestration for hybrid extraction.
// It expands target URLs, routes each page through the classify / parse /
// decide / merge pipeline with bounded batch concurrency, and maintains
// job-level progress counters.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/extract"
	"golang.org/x/sync/errgroup"
)

// Orchestration defaults.
const (
	// DefaultBatchSize is the number of URLs dispatched concurrently.
	// Batch N+1 starts only after batch N fully drains.
	DefaultBatchSize = 3

	// DefaultBatchDelay is awaited between batches to throttle outbound
	// request rate.
	DefaultBatchDelay = 1 * time.Second

	// DefaultTimeout bounds each page fetch and completion call.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages bounds pagination expansion per target URL.
	DefaultMaxPages = 5

	// parserAcceptThreshold is the parse confidence above which a
	// successful parser-only result is accepted without an LLM pass.
	parserAcceptThreshold = 0.6

	// defaultInstructions is used for the LLM-only branch when the job
	// carries no instructions.
	defaultInstructions = "extract all relevant data"
)

// Runner orchestrates extraction jobs.
type Runner struct {
	Fetcher    harvest.PageFetcher
	Expander   harvest.URLExpander // optional; nil disables URL expansion
	LLM        *extract.LLMExtractor // optional; nil disables LLM passes
	Jobs       harvest.JobService
	Results    harvest.ResultService
	PageErrors harvest.PageErrorService // optional

	RateLimiter *DomainLimiter // optional
	RetryDelays []time.Duration
	BatchSize   int
	Logger      *slog.Logger

	parser extract.Parser
}

// urlOutcome reports one URL's terminal state back to the batch loop.
type urlOutcome struct {
	url string
	ok  bool
}

// RunJob processes every URL of a job and drives the job's lifecycle from
// running to completed or failed. Per-URL failures increment the failed
// counter and never abort sibling URLs or subsequent batches; the final job
// status reflects whether the orchestration itself survived.
func (r *Runner) RunJob(ctx context.Context, job *harvest.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	logger := r.logger().With("job_id", job.ID)
	r.parser.Logger = logger

	settings := withDefaults(job.Settings)

	job.Status = harvest.JobRunning
	r.persistStatus(ctx, job.ID, harvest.JobRunning)

	urls := r.expandTargets(ctx, job, settings)

	var mu sync.Mutex
	totals := harvest.JobTotals{Total: len(urls)}
	job.Totals = totals
	r.persistProgress(ctx, job.ID, totals)

	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(urls); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + batchSize
		if end > len(urls) {
			end = len(urls)
		}

		// All URLs within a batch run concurrently; the loop suspends
		// until every member completes before starting the next batch.
		g, gctx := errgroup.WithContext(ctx)
		for _, pageURL := range urls[start:end] {
			pageURL := pageURL
			g.Go(func() error {
				ok := r.processURL(gctx, job, settings, pageURL)

				mu.Lock()
				totals.Processed++
				if ok {
					totals.Succeeded++
				} else {
					totals.Failed++
				}
				snapshot := totals
				mu.Unlock()

				r.persistProgress(gctx, job.ID, snapshot)
				return nil
			})
		}
		_ = g.Wait()

		// Inter-batch delay, not per-URL.
		if end < len(urls) {
			select {
			case <-ctx.Done():
			case <-time.After(settings.BatchDelay):
			}
		}
	}

	job.Totals = totals

	status := harvest.JobCompleted
	if ctx.Err() != nil {
		status = harvest.JobFailed
		logger.Error("job aborted", "error", ctx.Err())
	}
	job.Status = status
	r.persistStatus(ctx, job.ID, status)

	logger.Info("job finished",
		"status", string(status),
		"total", totals.Total,
		"succeeded", totals.Succeeded,
		"failed", totals.Failed,
	)
	return nil
}

// expandTargets expands each target URL through the configured expander.
// Expansion failures degrade to the bare target URL; they are not fatal to
// the job.
func (r *Runner) expandTargets(ctx context.Context, job *harvest.Job, settings harvest.JobSettings) []string {
	if r.Expander == nil || !settings.FollowPagination {
		return append([]string(nil), job.TargetURLs...)
	}

	seen := make(map[string]bool)
	var urls []string
	for _, target := range job.TargetURLs {
		expanded, err := r.Expander.Expand(ctx, target, settings.MaxPages)
		if err != nil {
			r.logger().Warn("url expansion failed", "job_id", job.ID, "url", target, "error", err)
			expanded = []string{target}
		}
		for _, u := range expanded {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// processURL runs the per-URL state machine: fetch, classify, parse, decide,
// optionally extract via LLM, merge, persist. It returns false for a
// terminal per-URL failure.
func (r *Runner) processURL(ctx context.Context, job *harvest.Job, settings harvest.JobSettings, pageURL string) bool {
	begin := time.Now()
	logger := r.logger().With("job_id", job.ID, "url", pageURL)

	page, err := r.fetchPage(ctx, settings, pageURL)
	if err != nil {
		logger.Warn("fetch failed", "error", err)
		r.recordPageError(ctx, job.ID, pageURL, "fetch", err)
		return false
	}

	category := extract.Classify(pageURL, page.Text)
	rules := extract.RuleSetFor(category)
	outcome := r.parser.Parse(rules, page)

	result := &harvest.MergedResult{
		JobID: job.ID,
		URL:   pageURL,
	}

	switch {
	case extract.NeedsLLM(outcome, job.Instructions) && r.LLM != nil:
		// Hybrid: an LLM failure degrades to the parser result because a
		// usable parser result exists to fall back to.
		llmOut := r.LLM.Extract(ctx, llmContent(page), job.Instructions, pageURL)
		if llmOut.Success {
			result.Fields = extract.Merge(outcome.Fields, llmOut.Fields)
			result.Source = harvest.SourceHybrid
			result.Explanation = r.LLM.Summarize(ctx, result.Fields, pageURL)
		} else {
			result.Fields = extract.Merge(outcome.Fields, harvest.FieldMap{})
			result.Source = harvest.SourceParser
			result.Explanation = degradeNote(llmOut)
			logger.Warn("llm pass failed, keeping parser result", "errors", llmOut.Errors)
		}

	case outcome.Success && outcome.Confidence > parserAcceptThreshold:
		result.Fields = extract.Merge(outcome.Fields, harvest.FieldMap{})
		result.Source = harvest.SourceParser

	default:
		// LLM-only: a failure here propagates as a per-URL failure
		// because there is no usable result to degrade to.
		if r.LLM == nil {
			logger.Warn("parse insufficient and no language model configured", "confidence", outcome.Confidence)
			r.recordPageError(ctx, job.ID, pageURL, "llm",
				harvest.Errorf(harvest.EUNAVAILABLE, "no language model configured"))
			return false
		}
		instructions := job.Instructions
		if instructions == "" {
			instructions = defaultInstructions
		}
		llmOut := r.LLM.Extract(ctx, llmContent(page), instructions, pageURL)
		if !llmOut.Success {
			logger.Warn("llm-only extraction failed", "errors", llmOut.Errors)
			r.recordPageError(ctx, job.ID, pageURL, "llm",
				harvest.Errorf(harvest.EINTERNAL, "extraction failed: %s", firstError(llmOut.Errors)))
			return false
		}
		result.Fields = extract.Merge(harvest.FieldMap{}, llmOut.Fields)
		result.Source = harvest.SourceLLM
		result.Explanation = llmOut.Explanation
	}

	result.ElapsedMs = time.Since(begin).Milliseconds()

	// Persistence is fire-and-forget: a storage failure is logged, never
	// fatal to the URL.
	if err := r.Results.CreateResult(ctx, result); err != nil {
		logger.Error("failed to persist result", "error", err)
	}

	logger.Info("url processed",
		"source", string(result.Source),
		"category", string(category),
		"confidence", outcome.Confidence,
		"elapsed_ms", result.ElapsedMs,
	)
	return true
}

// fetchPage retrieves a page with rate limiting, per-fetch timeout, and
// backoff retry.
func (r *Runner) fetchPage(ctx context.Context, settings harvest.JobSettings, pageURL string) (*harvest.PageExtract, error) {
	if r.RateLimiter != nil {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return nil, harvest.Errorf(harvest.EINVALID, "invalid URL %q", pageURL)
		}
		if err := r.RateLimiter.Wait(ctx, parsed.Host); err != nil {
			return nil, err
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	fetchFn := func(ctx context.Context, u string) (*harvest.PageExtract, error) {
		fctx, cancel := context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
		return r.Fetcher.Fetch(fctx, u)
	}
	return FetchWithRetryDelays(ctx, pageURL, fetchFn, nil, delays)
}

// recordPageError writes a page error log entry, best-effort.
func (r *Runner) recordPageError(ctx context.Context, jobID, pageURL, stage string, cause error) {
	if r.PageErrors == nil {
		return
	}
	e := &harvest.PageError{
		JobID:   jobID,
		URL:     pageURL,
		Stage:   stage,
		Message: cause.Error(),
	}
	if err := r.PageErrors.CreatePageError(ctx, e); err != nil {
		r.logger().Error("failed to persist page error", "job_id", jobID, "url", pageURL, "error", err)
	}
}

func (r *Runner) persistStatus(ctx context.Context, jobID string, status harvest.JobStatus) {
	if err := r.Jobs.UpdateJobStatus(ctx, jobID, status); err != nil {
		r.logger().Error("failed to persist job status", "job_id", jobID, "status", string(status), "error", err)
	}
}

func (r *Runner) persistProgress(ctx context.Context, jobID string, totals harvest.JobTotals) {
	if err := r.Jobs.UpdateJobProgress(ctx, jobID, totals); err != nil {
		r.logger().Error("failed to persist job progress", "job_id", jobID, "error", err)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// llmContent concatenates the page's markdown and plain text for the LLM
// extractor.
func llmContent(page *harvest.PageExtract) string {
	if page.Markdown == "" {
		return page.Text
	}
	return page.Markdown + "\n\n" + page.Text
}

// degradeNote describes a swallowed hybrid-path LLM failure.
func degradeNote(out *harvest.LLMOutcome) string {
	if len(out.Errors) > 0 {
		return fmt.Sprintf("language-model pass failed (%s); parser result retained", out.Errors[0])
	}
	return "language-model pass failed; parser result retained"
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return errs[0]
}

// withDefaults fills zero-valued settings.
func withDefaults(s harvest.JobSettings) harvest.JobSettings {
	if s.MaxPages <= 0 {
		s.MaxPages = DefaultMaxPages
	}
	if s.BatchDelay <= 0 {
		s.BatchDelay = DefaultBatchDelay
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s
}
