package main

import (
	"context"
	"fmt"
	"os"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ddellaringa6/btis/internal/application"
	"github.com/ddellaringa6/btis/internal/config"
	"github.com/ddellaringa6/btis/internal/data/cache"
	"github.com/ddellaringa6/btis/internal/domain/score"
	"github.com/ddellaringa6/btis/internal/persistence"
	"github.com/ddellaringa6/btis/internal/persistence/postgres"
	"github.com/ddellaringa6/btis/internal/providers/binance"
	"github.com/ddellaringa6/btis/internal/providers/coingecko"
	"github.com/ddellaringa6/btis/internal/providers/feargreed"
	"github.com/ddellaringa6/btis/internal/providers/glassnode"
)

func runRun(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	outPath, _ := cmd.Flags().GetString("out")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outPath != "" {
		cfg.Output.Path = outPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := []application.Option{application.WithDryRun(dryRun)}
	if c := buildCache(cfg); c != nil {
		opts = append(opts, application.WithCache(c))
	}
	if repo := buildHistory(ctx, cfg); repo != nil {
		opts = append(opts, application.WithHistory(repo))
	}

	pipeline := application.New(cfg, buildProviders(cfg), opts...)
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("scoring run failed: %w", err)
	}

	printResult(cfg, result, dryRun)
	return nil
}

// buildProviders wires the upstream clients from config. The Glassnode
// provider is only constructed when the credential is present.
func buildProviders(cfg *config.Config) application.Providers {
	p := cfg.Providers
	providers := application.Providers{
		Prices:    coingecko.New(p.CoinGecko.BaseURL, p.CoinGecko.GetTimeout(), p.CoinGecko.RateLimitRPS),
		Sentiment: feargreed.New(p.FearGreed.BaseURL, p.FearGreed.GetTimeout(), p.FearGreed.RateLimitRPS),
		Funding:   binance.New(p.Binance.BaseURL, p.Binance.GetTimeout(), p.Binance.RateLimitRPS),
	}

	if key := cfg.GlassnodeAPIKey(); key != "" {
		client, err := glassnode.New(p.Glassnode.BaseURL, key, p.Glassnode.GetTimeout(), p.Glassnode.RateLimitRPS)
		if err != nil {
			log.Warn().Err(err).Msg("glassnode client unavailable, omitting mvrv")
		} else {
			providers.Valuation = client
		}
	} else {
		log.Info().Msg("no glassnode key configured, mvrv metric disabled")
	}
	return providers
}

func buildCache(cfg *config.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Cache.RedisAddr})
	log.Debug().Str("addr", cfg.Cache.RedisAddr).Msg("redis price cache enabled")
	return cache.NewRedis(rdb)
}

// buildHistory connects the optional score store; connection failures are
// logged and the run proceeds without history.
func buildHistory(ctx context.Context, cfg *config.Config) persistence.ScoreRepo {
	if !cfg.History.Enabled {
		return nil
	}
	db, err := postgres.Connect(ctx, cfg.History.DSN)
	if err != nil {
		log.Warn().Err(err).Msg("score history store unavailable, continuing without it")
		return nil
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Warn().Err(err).Msg("score history migration failed, continuing without it")
		return nil
	}
	return postgres.NewScoreRepo(db, cfg.History.GetTimeout())
}

func printResult(cfg *config.Config, result *score.Result, dryRun bool) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("BTIS %.1f  (%s)\n", result.Score, result.Timestamp.Format("2006-01-02 15:04 MST"))
		for _, c := range result.Components {
			if c.Normalized != nil {
				fmt.Printf("  %-16s %6.1f  weight %.2f  %s\n", c.Name, *c.Normalized, c.Weight, c.Detail)
			} else {
				fmt.Printf("  %-16s %6s  weight %.2f  (absent)\n", c.Name, "—", c.Weight)
			}
		}
		if !dryRun {
			fmt.Printf("Wrote %s\n", cfg.Output.Path)
		}
		return
	}

	if dryRun {
		fmt.Printf("btis=%.1f dry_run=true\n", result.Score)
	} else {
		fmt.Printf("btis=%.1f out=%s\n", result.Score, cfg.Output.Path)
	}
}
