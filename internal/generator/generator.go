package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/contextbudget"
	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/llm"
)

// ProgressFunc is called before and after each document generation.
// stage is "start", "done", or "failed".
type ProgressFunc func(docType artifact.Type, stage string)

// Options configure a Generator. Zero values fall back to the defaults below.
type Options struct {
	// Model is the model name passed to providers. Empty lets each provider
	// use its own default.
	Model string
	// MaxOutputTokens caps the completion size per document.
	MaxOutputTokens int
	Temperature     float64
	// MaxCostUSD aborts generation once the project's accumulated spend
	// reaches this ceiling. Zero disables the guard.
	MaxCostUSD float64
	Logger     *log.Logger
}

const (
	defaultMaxOutputTokens = 4000
	defaultTemperature     = 0.4
)

// Generator runs the document pipeline: assemble budgeted context, complete
// through the fallback manager, persist, and register the result as context
// for later documents.
type Generator struct {
	fm       *fallback.Manager
	budgeter *contextbudget.Budgeter
	store    *docstore.Store

	model       string
	maxTokens   int
	temperature float64
	maxCostUSD  float64
	logger      *log.Logger
	onProgress  ProgressFunc
}

// New creates a Generator.
func New(fm *fallback.Manager, budgeter *contextbudget.Budgeter, store *docstore.Store, opts Options) *Generator {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = defaultMaxOutputTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Generator{
		fm:          fm,
		budgeter:    budgeter,
		store:       store,
		model:       opts.Model,
		maxTokens:   opts.MaxOutputTokens,
		temperature: opts.Temperature,
		maxCostUSD:  opts.MaxCostUSD,
		logger:      opts.Logger,
	}
}

// SetProgressFunc sets the progress callback.
func (g *Generator) SetProgressFunc(fn ProgressFunc) {
	g.onProgress = fn
}

func (g *Generator) progress(docType artifact.Type, stage string) {
	if g.onProgress != nil {
		g.onProgress(docType, stage)
	}
}

// GenerateDocument produces one artifact for the project and stores it. The
// saved record is returned. A generation log entry is written whether the
// call succeeds or fails.
func (g *Generator) GenerateDocument(ctx context.Context, projectID string, docType artifact.Type) (*docstore.Record, error) {
	if !artifact.Known(docType) {
		return nil, fmt.Errorf("unknown document type %q", docType)
	}

	project, err := g.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	if err := g.checkCostCeiling(ctx, projectID); err != nil {
		return nil, err
	}

	g.progress(docType, "start")

	// The description enters the prompt through the budgeter's capped core
	// summary section, not as a separate uncapped block.
	if project.Description != "" {
		g.budgeter.SetProjectSummary(projectID, project.Description)
	}
	docContext := g.budgeter.BuildContextForDocument(ctx, projectID, docType)
	messages := buildMessages(docType, project.Name, docContext)

	start := time.Now()
	var usedProvider string
	resp, err := g.fm.ExecuteWithFallback(ctx, string(docType), func(ctx context.Context, p llm.Provider) (*llm.CompletionResponse, error) {
		usedProvider = p.Name()
		return p.Complete(ctx, llm.CompletionRequest{
			Model:       g.model,
			Messages:    messages,
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		})
	})
	duration := time.Since(start)

	if err != nil {
		g.progress(docType, "failed")
		logErr := g.store.LogGeneration(ctx, docstore.GenerationEntry{
			ProjectID:    projectID,
			DocumentType: string(docType),
			Provider:     usedProvider,
			Model:        g.model,
			DurationMs:   duration.Milliseconds(),
			Success:      false,
			Error:        err.Error(),
		})
		if logErr != nil {
			g.logger.Warn("recording failed generation", "error", logErr)
		}
		return nil, fmt.Errorf("generate %s: %w", docType, err)
	}

	cost := llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens)

	record, err := g.store.SaveDocument(ctx, docstore.Record{
		ProjectID: projectID,
		Type:      docType,
		Content:   resp.Content,
		Quality:   assessQuality(resp),
		Model:     resp.Model,
		Provider:  usedProvider,
	})
	if err != nil {
		g.progress(docType, "failed")
		return nil, fmt.Errorf("save %s: %w", docType, err)
	}

	g.budgeter.TrackGeneratedDocument(record.Context())

	if err := g.store.LogGeneration(ctx, docstore.GenerationEntry{
		ProjectID:    projectID,
		DocumentType: string(docType),
		Provider:     usedProvider,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      cost,
		DurationMs:   duration.Milliseconds(),
		Success:      true,
	}); err != nil {
		g.logger.Warn("recording generation", "error", err)
	}

	g.logger.Info("document generated",
		"type", docType, "provider", usedProvider,
		"tokens_in", resp.InputTokens, "tokens_out", resp.OutputTokens,
		"cost_usd", fmt.Sprintf("%.4f", cost), "duration", duration.Round(time.Millisecond))

	g.progress(docType, "done")
	return record, nil
}

// GenerateSet produces the listed artifacts in order. Earlier documents feed
// the context of the later ones, so the catalog order matters. One failing
// document does not stop the rest; all failures are returned together.
func (g *Generator) GenerateSet(ctx context.Context, projectID string, types []artifact.Type) ([]docstore.Record, []error) {
	var (
		records []docstore.Record
		errs    []error
	)
	for _, t := range types {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		r, err := g.GenerateDocument(ctx, projectID, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, *r)
	}
	return records, errs
}

// checkCostCeiling enforces the per-project spend limit, if one is set.
func (g *Generator) checkCostCeiling(ctx context.Context, projectID string) error {
	if g.maxCostUSD <= 0 {
		return nil
	}
	spent, err := g.store.TotalCost(ctx, projectID)
	if err != nil {
		return fmt.Errorf("reading accumulated cost: %w", err)
	}
	if spent >= g.maxCostUSD {
		return fmt.Errorf("cost ceiling reached: spent $%.2f of $%.2f limit", spent, g.maxCostUSD)
	}
	return nil
}

// assessQuality assigns a rough 0-10 quality score used for context
// prioritization. Longer, well-structured responses score higher.
func assessQuality(resp *llm.CompletionResponse) float64 {
	score := 5.0
	switch {
	case resp.OutputTokens >= 1500:
		score += 2
	case resp.OutputTokens >= 500:
		score += 1
	case resp.OutputTokens < 100:
		score -= 2
	}
	if resp.FinishReason == "length" {
		score -= 1
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}
