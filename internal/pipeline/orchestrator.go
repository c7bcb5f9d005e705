// Package pipeline drives a scraper-build job end to end: fetch and analyze
// the page, detect dynamic content, pick a strategy, generate code, test it
// in the sandbox, and refine once on failure.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/SameerVers3/Scrapply/internal/analyze"
	"github.com/SameerVers3/Scrapply/internal/generate"
	"github.com/SameerVers3/Scrapply/internal/job"
	"github.com/SameerVers3/Scrapply/internal/sandbox"
	"github.com/SameerVers3/Scrapply/internal/strategy"
	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/rs/zerolog"
)

// How much of the chosen container is shown to the code generator.
const snippetMaxLen = 4000

// Fetcher retrieves the raw HTML document for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.PageSnapshot, error)
}

// Detector probes a page for dynamic-content evidence. DetectDynamicContent
// uses a live browser; DetectFromHTML is the degraded, browserless path.
type Detector interface {
	DetectDynamicContent(ctx context.Context, url string) models.DynamicIndicators
	DetectFromHTML(htmlSrc string) models.DynamicIndicators
}

// Executor runs generated code against a URL.
type Executor interface {
	Execute(ctx context.Context, source, url string) (models.SandboxResult, error)
}

// SandboxFactory builds an Executor per test run, since the profile and
// timeout depend on the scraper type under test.
type SandboxFactory func(profile sandbox.Profile, timeout time.Duration) (Executor, error)

// NewSandboxExecutor is the production SandboxFactory.
func NewSandboxExecutor(log zerolog.Logger) SandboxFactory {
	return func(profile sandbox.Profile, timeout time.Duration) (Executor, error) {
		return sandbox.New(profile, timeout, sandbox.DefaultMemoryLimitMB, log)
	}
}

// Orchestrator wires the pipeline stages together. All collaborators are
// injected; the orchestrator itself holds no scraping logic.
type Orchestrator struct {
	fetcher    Fetcher
	analyzer   *analyze.Analyzer
	detector   Detector
	generator  generate.Generator
	newSandbox SandboxFactory
	store      *job.Store
	sink       job.EventSink
	log        zerolog.Logger
}

func New(
	fetcher Fetcher,
	analyzer *analyze.Analyzer,
	detector Detector,
	generator generate.Generator,
	newSandbox SandboxFactory,
	store *job.Store,
	sink job.EventSink,
	log zerolog.Logger,
) *Orchestrator {
	if sink == nil {
		sink = job.NopSink{}
	}
	return &Orchestrator{
		fetcher:    fetcher,
		analyzer:   analyzer,
		detector:   detector,
		generator:  generator,
		newSandbox: newSandbox,
		store:      store,
		sink:       sink,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// Run creates a job for url, processes it to completion and returns the
// final job state. The returned error covers only faults of the pipeline
// itself; a scraper that could not be made to work comes back as a job in
// the failed state with a nil error.
func (o *Orchestrator) Run(ctx context.Context, url, description string) (*job.Job, error) {
	j := job.NewJob(url, description)
	if err := o.store.Create(j); err != nil {
		return nil, err
	}
	o.sink.Report(job.Event{JobID: j.ID, Status: j.Status, Progress: j.Progress, Message: j.Message})

	if err := o.process(ctx, j.ID); err != nil {
		o.fail(j.ID, 100, fmt.Sprintf("Processing failed: %v", err))
	}
	return o.store.Get(j.ID)
}

func (o *Orchestrator) process(ctx context.Context, id string) error {
	j, err := o.store.Get(id)
	if err != nil {
		return err
	}
	log := o.log.With().Str("job_id", id).Str("url", j.URL).Logger()

	// Stage 1: structural analysis and dynamic-content detection.
	o.checkpoint(id, models.JobAnalyzing, 20, "Analyzing website structure and content")

	snap, err := o.fetcher.Fetch(ctx, j.URL)
	if err != nil {
		log.Error().Err(err).Msg("page fetch failed")
		o.fail(id, 20, fmt.Sprintf("Failed to analyze website: %v", err))
		return nil
	}

	container, score := o.analyzer.Analyze(snap.HTML)
	hints := analyze.DeriveFieldHints(container)
	snippet := analyze.Snippet(container, snippetMaxLen)
	if snippet == "" {
		snippet = analyze.SampleHTML(snap.HTML, snippetMaxLen)
	}
	log.Debug().Float64("container_score", score).Str("item_selector", hints.ItemSelector).Msg("structural analysis done")

	ind := o.detector.DetectDynamicContent(ctx, j.URL)
	if ind.IsZero() {
		// Browser detection produced nothing; fall back to scanning the
		// HTML we already fetched.
		ind = o.detector.DetectFromHTML(snap.HTML)
	}
	if err := o.store.Update(id, func(cur *job.Job) { cur.Indicators = ind }); err != nil {
		return err
	}

	// Stage 2: strategy selection and code generation. Hybrid starts with a
	// static scraper and keeps the dynamic engine in reserve.
	o.checkpoint(id, models.JobGenerating, 50, "Generating scraper code")

	strat := strategy.Select(ind, false)
	scraperType := strat
	if strat == models.StrategyHybrid {
		scraperType = models.StrategyStatic
	}
	if err := o.store.Update(id, func(cur *job.Job) { cur.Strategy = strat }); err != nil {
		return err
	}

	gc := generate.Context{
		URL:             j.URL,
		Description:     j.Description,
		Snippet:         snippet,
		SnippetMarkdown: generate.ToMarkdown(snippet),
		Hints:           hints,
		Strategy:        scraperType,
		Config:          strategy.Config(scraperType, ind),
	}
	code, err := o.generator.Generate(ctx, gc)
	if err != nil {
		log.Error().Err(err).Msg("code generation failed")
		o.fail(id, 50, fmt.Sprintf("Failed to generate scraper code: %v", err))
		return nil
	}

	// Stage 3: sandboxed testing, with the hybrid fallback evaluated once
	// before any refinement.
	o.checkpoint(id, models.JobTesting, 80, "Testing generated scraper")

	result, err := o.test(ctx, scraperType, code, j.URL)
	if err != nil {
		return err
	}

	fallbackUsed := false
	if strat == models.StrategyHybrid && scraperType == models.StrategyStatic &&
		strategy.ShouldFallbackToDynamic(result, ind) {
		o.checkpoint(id, models.JobGenerating, 60, "Falling back to dynamic scraping")

		gc.Strategy = models.StrategyDynamic
		gc.Config = strategy.Config(models.StrategyDynamic, ind)
		dynCode, genErr := o.generator.Generate(ctx, gc)
		if genErr != nil {
			log.Warn().Err(genErr).Msg("dynamic fallback generation failed, keeping static result")
		} else {
			o.checkpoint(id, models.JobTesting, 85, "Testing dynamic scraper")
			dynResult, runErr := o.test(ctx, models.StrategyDynamic, dynCode, j.URL)
			if runErr != nil {
				return runErr
			}
			if dynResult.Success {
				code = dynCode
				result = dynResult
				scraperType = models.StrategyDynamic
				fallbackUsed = true
			}
		}
	}

	// One refinement round. A refinement error is not fatal: the job just
	// finalizes with the failed test result.
	if !result.Success {
		o.checkpoint(id, models.JobGenerating, 60, "Refining scraper based on test results")

		gc.Strategy = scraperType
		gc.Config = strategy.Config(scraperType, ind)
		refined, refineErr := o.generator.Refine(ctx, gc, code, result)
		if refineErr != nil {
			log.Warn().Err(refineErr).Msg("refinement failed, finalizing with test result")
		} else {
			code = refined
			o.checkpoint(id, models.JobTesting, 80, "Testing refined scraper")
			result, err = o.test(ctx, scraperType, code, j.URL)
			if err != nil {
				return err
			}
		}
	}

	// Stage 4: finalize.
	if err := o.store.Update(id, func(cur *job.Job) {
		cur.ScraperCode = code
		cur.FallbackUsed = fallbackUsed
		if fallbackUsed {
			cur.Strategy = models.StrategyDynamic
		}
	}); err != nil {
		return err
	}

	if result.Success {
		sample := result.Data
		if len(sample) > 3 {
			sample = sample[:3]
		}
		if err := o.store.Update(id, func(cur *job.Job) { cur.SampleData = sample }); err != nil {
			return err
		}
		o.complete(id, models.JobReady, "Scraper ready for use")
		log.Info().Str("strategy", string(scraperType)).Int("records", len(result.Data)).Msg("job completed")
		return nil
	}

	if err := o.store.Update(id, func(cur *job.Job) { cur.ErrorInfo = &result }); err != nil {
		return err
	}
	o.fail(id, 100, "Failed to create working scraper")
	log.Warn().Str("error_type", result.ErrorType).Msg("job failed")
	return nil
}

// test runs code in a sandbox sized for the scraper type.
func (o *Orchestrator) test(ctx context.Context, scraperType models.Strategy, code, url string) (models.SandboxResult, error) {
	profile := sandbox.ProfileStatic
	timeout := sandbox.DefaultTimeout
	if scraperType == models.StrategyDynamic {
		profile = sandbox.ProfileDynamic
		timeout = sandbox.DefaultDynamicTimeout
	}

	exec, err := o.newSandbox(profile, timeout)
	if err != nil {
		return models.SandboxResult{}, fmt.Errorf("creating sandbox: %w", err)
	}
	return exec.Execute(ctx, code, url)
}

func (o *Orchestrator) checkpoint(id string, status models.JobStatus, progress int, message string) {
	if err := o.store.Update(id, func(cur *job.Job) {
		cur.Status = status
		cur.Progress = progress
		cur.Message = message
	}); err != nil {
		o.log.Error().Err(err).Str("job_id", id).Msg("checkpoint update failed")
		return
	}
	o.sink.Report(job.Event{JobID: id, Status: status, Progress: progress, Message: message})
}

func (o *Orchestrator) fail(id string, progress int, message string) {
	now := time.Now().UTC()
	if err := o.store.Update(id, func(cur *job.Job) {
		cur.Status = models.JobFailed
		cur.Progress = progress
		cur.Message = message
		cur.CompletedAt = &now
	}); err != nil {
		o.log.Error().Err(err).Str("job_id", id).Msg("failure update failed")
		return
	}
	o.sink.Report(job.Event{JobID: id, Status: models.JobFailed, Progress: progress, Message: message})
}

func (o *Orchestrator) complete(id string, status models.JobStatus, message string) {
	now := time.Now().UTC()
	if err := o.store.Update(id, func(cur *job.Job) {
		cur.Status = status
		cur.Progress = 100
		cur.Message = message
		cur.CompletedAt = &now
	}); err != nil {
		o.log.Error().Err(err).Str("job_id", id).Msg("completion update failed")
		return
	}
	o.sink.Report(job.Event{JobID: id, Status: status, Progress: 100, Message: message})
}
