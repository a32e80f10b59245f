// Package generator orchestrates a generation run: resolve the template,
// produce a value for every placeholder through the configured model, and
// render the result to the output file.
package generator

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/promptcrafter/promptcrafter/ai/openai"
	"github.com/promptcrafter/promptcrafter/ai/provider"
	"github.com/promptcrafter/promptcrafter/ai/tracker"
	"github.com/promptcrafter/promptcrafter/budget"
	"github.com/promptcrafter/promptcrafter/cache"
	"github.com/promptcrafter/promptcrafter/config"
	"github.com/promptcrafter/promptcrafter/errors"
	"github.com/promptcrafter/promptcrafter/internal/fileio"
	"github.com/promptcrafter/promptcrafter/template"
)

// Result summarizes one generation run
type Result struct {
	Values      map[string]string `json:"values"`
	CacheHits   []string          `json:"cache_hits,omitempty"` // params served from cache, in template order
	Rendered    string            `json:"-"`
	OutputPath  string            `json:"output_path"`
	Model       string            `json:"model"`
	Provider    string            `json:"provider"`
	TotalTokens int               `json:"total_tokens"`
	CostUSD     float64           `json:"cost_usd"`
	Duration    time.Duration     `json:"duration"`
}

// Options carries the cross-cutting dependencies for a run
type Options struct {
	Logger        *zap.SugaredLogger
	DB            *sql.DB         // nil disables cache and usage tracking
	Client        provider.Client // override for tests; nil = select from config
	OperationType string          // recorded with usage; defaults to "generate"
}

// Generator runs template generation against a resolved configuration
type Generator struct {
	cfg      *config.Config
	client   provider.Client
	cache    *cache.Cache
	enforcer *budget.Enforcer
	logger   *zap.SugaredLogger
}

// New builds a generator from configuration. The config must already be
// validated.
func New(cfg *config.Config, opts Options) (*Generator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	opType := opts.OperationType
	if opType == "" {
		opType = "generate"
	}

	client := opts.Client
	if client == nil {
		var err error
		client, err = provider.NewClient(cfg, provider.Options{
			Logger:        logger,
			DB:            opts.DB,
			OperationType: opType,
		})
		if err != nil {
			return nil, err
		}
	}

	var responseCache *cache.Cache
	if cfg.Cache.Enabled && opts.DB != nil {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		responseCache = cache.New(opts.DB, ttl, logger)
	}

	var spend budget.SpendReader
	if opts.DB != nil {
		spend = tracker.NewUsageTracker(opts.DB)
	}
	enforcer := budget.NewEnforcer(spend, cfg.Budget.DailyUSD, cfg.Budget.MaxCallsPerMinute)

	return &Generator{
		cfg:      cfg,
		client:   client,
		cache:    responseCache,
		enforcer: enforcer,
		logger:   logger,
	}, nil
}

// Run executes one full generation: load the template, generate a value
// for every placeholder, render, and write the output file.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	doc, err := template.LoadFile(g.cfg.Template.Path)
	if err != nil {
		return nil, err
	}

	placeholders := doc.Body.Placeholders()
	prompts := g.cfg.ParamPrompts()
	if err := template.ValidateParams(placeholders, prompts); err != nil {
		return nil, err
	}

	// Frontmatter overrides config, config overrides built-in defaults
	baseTemp := 0.2
	if t := g.cfg.ModelTemperature(); t != nil {
		baseTemp = *t
	}
	baseTokens := 1000
	if g.cfg.Model.MaxTokens != nil {
		baseTokens = *g.cfg.Model.MaxTokens
	}
	model := doc.Model(g.client.Model())
	temperature := doc.Temperature(baseTemp)
	maxTokens := doc.MaxTokens(baseTokens)

	g.logger.Infow("Starting generation",
		"template", g.cfg.Template.Path,
		"params", len(placeholders),
		"provider", g.client.Provider(),
		"model", model,
	)

	result := &Result{
		Values:   make(map[string]string, len(placeholders)),
		Model:    model,
		Provider: g.client.Provider(),
	}

	for _, name := range placeholders {
		prompt := prompts[name]

		if g.cache != nil {
			key := cache.Key{
				Provider:    g.client.Provider(),
				Model:       model,
				Temperature: temperature,
				Prompt:      prompt,
			}
			if entry, err := g.cache.Get(key); err == nil {
				g.logger.Debugw("Cache hit", "param", name, "model", model)
				result.Values[name] = entry.Response
				result.CacheHits = append(result.CacheHits, name)
				continue
			} else if !errors.Is(err, errors.ErrNotFound) {
				g.logger.Warnw("Cache read failed", "param", name, "error", err)
			}
		}

		// Reserve blocks while the per-minute call window is full, so a
		// template with more params than the limit still completes
		if err := g.enforcer.Reserve(ctx); err != nil {
			return nil, errors.Wrapf(err, "generation stopped at param %q", name)
		}

		resp, err := g.client.Chat(ctx, openai.ChatRequest{
			UserPrompt:  prompt,
			ParamName:   name,
			Model:       &model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate value for %q", name)
		}

		result.Values[name] = resp.Content
		result.TotalTokens += resp.Usage.TotalTokens
		result.CostUSD += openai.CalculateCost(g.client.Provider(), model,
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

		if g.cache != nil {
			key := cache.Key{
				Provider:    g.client.Provider(),
				Model:       model,
				Temperature: temperature,
				Prompt:      prompt,
			}
			if err := g.cache.Put(key, resp.Content,
				resp.Usage.PromptTokens, resp.Usage.CompletionTokens); err != nil {
				g.logger.Warnw("Cache write failed", "param", name, "error", err)
			}
		}
	}

	rendered, err := doc.Body.Execute(result.Values)
	if err != nil {
		return nil, err
	}
	result.Rendered = rendered

	outputPath := g.cfg.OutputPath()
	if err := fileio.WriteAtomic(outputPath, []byte(rendered), 0o644); err != nil {
		return nil, err
	}
	result.OutputPath = outputPath
	result.Duration = time.Since(started)

	callsInWindow, callsRemaining := g.enforcer.Limiter().Stats()
	g.logger.Infow("Generation complete",
		"output", outputPath,
		"cache_hits", len(result.CacheHits),
		"api_calls", len(placeholders)-len(result.CacheHits),
		"tokens", result.TotalTokens,
		"cost_usd", result.CostUSD,
		"rate_window_calls", callsInWindow,
		"rate_window_remaining", callsRemaining,
		"duration", result.Duration,
	)

	return result, nil
}

// RunFile loads and validates the config at configPath, then executes a
// generation run with it. The scheduler uses this to run jobs whose
// config may have changed since the job was registered.
func RunFile(ctx context.Context, configPath string, opts Options) (*Result, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}
	return gen.Run(ctx)
}
