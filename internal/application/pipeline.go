// Package application orchestrates one scoring run: fetch each metric
// sequentially, normalize, aggregate with re-normalized weights, and persist
// the output document atomically.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ddellaringa6/btis/internal/config"
	"github.com/ddellaringa6/btis/internal/data/cache"
	"github.com/ddellaringa6/btis/internal/domain/indicator"
	"github.com/ddellaringa6/btis/internal/domain/score"
	btisio "github.com/ddellaringa6/btis/internal/io"
	"github.com/ddellaringa6/btis/internal/persistence"

	httpmetrics "github.com/ddellaringa6/btis/internal/interfaces/http"
)

// PriceHistoryProvider supplies the daily closing price series, oldest first.
type PriceHistoryProvider interface {
	DailyPrices(ctx context.Context, days int) ([]float64, error)
}

// SentimentProvider supplies the Fear & Greed index (0-100).
type SentimentProvider interface {
	Index(ctx context.Context) (float64, error)
}

// FundingProvider supplies the last settled funding rate as percent per 8h.
type FundingProvider interface {
	LastFundingRate(ctx context.Context, symbol string) (float64, error)
}

// ValuationProvider supplies the MVRV Z-Score. Nil when the credential gate
// is closed.
type ValuationProvider interface {
	MVRVZScore(ctx context.Context, asset string) (float64, error)
}

// Providers bundles the upstream data sources for one pipeline.
type Providers struct {
	Prices    PriceHistoryProvider
	Sentiment SentimentProvider
	Funding   FundingProvider
	Valuation ValuationProvider
}

// Pipeline runs the fetch → normalize → aggregate → persist sequence.
type Pipeline struct {
	cfg       *config.Config
	providers Providers
	cache     cache.Cache
	history   persistence.ScoreRepo
	metrics   *httpmetrics.MetricsRegistry
	dryRun    bool
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithCache attaches a response cache for the price history fetch.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithHistory attaches the optional score history store.
func WithHistory(repo persistence.ScoreRepo) Option {
	return func(p *Pipeline) { p.history = repo }
}

// WithDryRun computes the score without writing the output document or the
// history row.
func WithDryRun(dry bool) Option {
	return func(p *Pipeline) { p.dryRun = dry }
}

// New builds a pipeline from validated config and providers.
func New(cfg *config.Config, providers Providers, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		providers: providers,
		metrics:   httpmetrics.GetMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one scoring pass. A per-metric fetch failure marks that metric
// absent and the run continues; only the all-absent case fails, leaving the
// previous output document untouched.
func (p *Pipeline) Run(ctx context.Context) (*score.Result, error) {
	runID := uuid.NewString()
	log.Info().Str("run_id", runID).Str("symbol", p.cfg.Symbol).Msg("starting scoring run")

	readings := p.collectReadings(ctx)

	result, err := score.Aggregate(readings, p.cfg.WeightTable(), time.Now(), runID)
	if err != nil {
		if errors.Is(err, score.ErrNoData) {
			p.metrics.RunsTotal.WithLabelValues("no_data").Inc()
			log.Error().Str("run_id", runID).Msg("all metrics absent, preserving last output")
		} else {
			p.metrics.RunsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	present := 0
	for _, c := range result.Components {
		if c.Normalized != nil {
			present++
		}
	}
	p.metrics.LatestScore.Set(result.Score)
	p.metrics.ComponentsPresent.Set(float64(present))

	if !p.dryRun {
		if err := btisio.WriteJSONAtomic(p.cfg.Output.Path, result); err != nil {
			p.metrics.RunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		p.recordHistory(ctx, result)
	}

	p.metrics.RunsTotal.WithLabelValues("ok").Inc()
	log.Info().
		Str("run_id", runID).
		Float64("score", result.Score).
		Int("components_present", present).
		Msg("scoring run complete")
	return result, nil
}

// collectReadings fetches every metric sequentially. Failures downgrade the
// metric to absent, never abort.
func (p *Pipeline) collectReadings(ctx context.Context) []score.Reading {
	readings := make([]score.Reading, 0, len(score.MetricNames()))

	rsiReading, rangeReading := p.priceReadings(ctx)
	readings = append(readings, rsiReading)

	if p.providers.Valuation != nil {
		readings = append(readings, p.fetchScaled(ctx, score.MetricMVRV, "%.2f", func(ctx context.Context) (float64, error) {
			return p.providers.Valuation.MVRVZScore(ctx, p.cfg.Symbol)
		}))
	} else {
		log.Debug().Msg("mvrv provider disabled, omitting metric")
		readings = append(readings, score.Absent(score.MetricMVRV))
	}

	readings = append(readings, p.fetchScaled(ctx, score.MetricFearGreed, "%.0f", func(ctx context.Context) (float64, error) {
		return p.providers.Sentiment.Index(ctx)
	}))

	readings = append(readings, rangeReading)

	readings = append(readings, p.fetchScaled(ctx, score.MetricFunding, "%.4f%%", func(ctx context.Context) (float64, error) {
		return p.providers.Funding.LastFundingRate(ctx, p.cfg.Symbol)
	}))

	return readings
}

// priceReadings derives both price-based metrics from a single history
// fetch; if the fetch fails both are absent.
func (p *Pipeline) priceReadings(ctx context.Context) (rsi, logRange score.Reading) {
	prices, err := p.fetchPrices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("price history fetch failed, omitting rsi and price_log_range")
		p.metrics.FetchFailures.WithLabelValues(score.MetricRSI).Inc()
		p.metrics.FetchFailures.WithLabelValues(score.MetricPriceLogRange).Inc()
		return score.Absent(score.MetricRSI), score.Absent(score.MetricPriceLogRange)
	}

	rsi = p.rsiReading(prices)
	logRange = p.logRangeReading(prices)
	return rsi, logRange
}

func (p *Pipeline) rsiReading(prices []float64) score.Reading {
	window := indicator.Tail(prices, p.cfg.Metrics.RSIWindow)
	raw, err := indicator.RSI(window, p.cfg.Metrics.RSIPeriod)
	if err != nil {
		log.Warn().Err(err).Msg("rsi computation failed, omitting metric")
		return score.Absent(score.MetricRSI)
	}
	return p.normalized(score.MetricRSI, raw, fmt.Sprintf("%.2f", raw))
}

func (p *Pipeline) logRangeReading(prices []float64) score.Reading {
	pct, err := indicator.LogPricePercentile(prices)
	if err != nil {
		log.Warn().Err(err).Msg("log-range percentile failed, omitting metric")
		return score.Absent(score.MetricPriceLogRange)
	}
	return p.normalized(score.MetricPriceLogRange, pct, fmt.Sprintf("%.0f pctile", pct))
}

// fetchPrices pulls the daily series, consulting the cache first. Cache
// failures fall through to a live fetch.
func (p *Pipeline) fetchPrices(ctx context.Context) ([]float64, error) {
	key := fmt.Sprintf("btis:prices:%s:%d", p.cfg.Symbol, p.cfg.Metrics.HistoryDays)

	if p.cache != nil {
		if data, ok := p.cache.Get(ctx, key); ok {
			var prices []float64
			if err := json.Unmarshal(data, &prices); err == nil && len(prices) > 0 {
				log.Debug().Int("points", len(prices)).Msg("price history cache hit")
				return prices, nil
			}
			log.Warn().Msg("discarding corrupt price cache entry")
		}
	}

	start := time.Now()
	prices, err := p.providers.Prices.DailyPrices(ctx, p.cfg.Metrics.HistoryDays)
	p.observeFetch(score.MetricPriceLogRange, start, err)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if data, err := json.Marshal(prices); err == nil {
			p.cache.Set(ctx, key, data, p.cfg.Cache.GetTTL())
		}
	}
	return prices, nil
}

// fetchScaled runs one provider fetch and normalizes the result through the
// metric's configured scale.
func (p *Pipeline) fetchScaled(ctx context.Context, metric, detailFormat string, fetch func(context.Context) (float64, error)) score.Reading {
	start := time.Now()
	raw, err := fetch(ctx)
	p.observeFetch(metric, start, err)
	if err != nil {
		log.Warn().Err(err).Str("metric", metric).Msg("fetch failed, omitting metric")
		p.metrics.FetchFailures.WithLabelValues(metric).Inc()
		return score.Absent(metric)
	}
	return p.normalized(metric, raw, fmt.Sprintf(detailFormat, raw))
}

func (p *Pipeline) normalized(metric string, raw float64, detail string) score.Reading {
	scale, err := p.cfg.ScaleFor(metric)
	if err != nil {
		log.Warn().Err(err).Str("metric", metric).Msg("no scale for metric")
		return score.Absent(metric)
	}
	normalized, err := scale.Normalize(raw)
	if err != nil {
		log.Warn().Err(err).Str("metric", metric).Msg("normalization failed, omitting metric")
		return score.Absent(metric)
	}
	return score.Present(metric, raw, normalized, detail)
}

func (p *Pipeline) observeFetch(metric string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metrics.FetchDuration.WithLabelValues(metric, result).Observe(time.Since(start).Seconds())
}

// recordHistory appends the run to the optional score store; failures are
// logged and swallowed.
func (p *Pipeline) recordHistory(ctx context.Context, result *score.Result) {
	if p.history == nil {
		return
	}
	components, err := json.Marshal(result.Components)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal components for history")
		return
	}
	row := persistence.ScoreRow{
		RunID:      result.RunID,
		Score:      result.Score,
		Components: components,
		CreatedAt:  result.Timestamp,
	}
	if err := p.history.Insert(ctx, row); err != nil {
		log.Warn().Err(err).Msg("failed to record score history")
	}
}
