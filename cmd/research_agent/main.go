package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindbloom-labs/research_agent/internal/config"
	"github.com/mindbloom-labs/research_agent/internal/llm"
	"github.com/mindbloom-labs/research_agent/internal/logger"
	"github.com/mindbloom-labs/research_agent/internal/research"
	"github.com/mindbloom-labs/research_agent/internal/scraper"
	"github.com/mindbloom-labs/research_agent/internal/search/factory"
	"github.com/mindbloom-labs/research_agent/internal/storage"
	"github.com/mindbloom-labs/research_agent/internal/trends"
)

// fallbackKeywords is used when the trend pipeline comes back empty.
var fallbackKeywords = []string{
	"anxiety", "burnout", "mindfulness", "self care", "sleep", "stress",
}

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "research_agent",
		Short: "Quality-gated web research and trending-keyword agent",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to the yaml config file")

	rootCmd.AddCommand(newResearchCmd())
	rootCmd.AddCommand(newKeywordsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config and initializes logging. Configuration errors are
// fatal here at the boundary; no retry can fix a missing credential.
func setup() *config.Config {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("cannot load config file: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Fatal("config error: llm.api_key is not set")
	}
	return cfg
}

func newResearchCmd() *cobra.Command {
	var topic, audience string

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Research a topic and print the synthesized brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("--topic must not be empty")
			}

			cfg := setup()
			ctx := context.Background()

			gen, err := llm.NewClient(ctx, cfg.LLM, cfg.Concurrency)
			if err != nil {
				logger.Log.Fatalf("llm init failed: %v", err)
			}
			searcher, err := factory.NewSearcher(cfg)
			if err != nil {
				logger.Log.Fatalf("search init failed: %v", err)
			}

			orch := research.NewOrchestrator(searcher, scraper.NewExtractor(30*time.Second), gen, research.Options{
				TargetSources:     cfg.Research.TargetSources,
				MaxAttempts:       cfg.Research.MaxAttempts,
				ResultsPerAttempt: cfg.Research.ResultsPerAttempt,
				AcceptThreshold:   cfg.Research.AcceptThreshold,
				SynthesisBudget:   cfg.Research.SynthesisBudget,
				ExcludedHosts:     cfg.Research.ExcludedHosts,
			})

			result := orch.Research(ctx, strings.TrimSpace(topic), audience)

			fmt.Println(result.Summary)
			fmt.Println()
			fmt.Println("Sources:")
			for _, u := range result.Sources {
				fmt.Printf("- %s\n", u)
			}

			// The run log is a durable side record; failing to write it
			// never fails the run.
			if cfg.DB.Host != "" {
				store, err := storage.NewStorage(cfg.DB)
				if err != nil {
					logger.Log.Warnf("run log unavailable, cannot connect to database: %v", err)
					return nil
				}
				defer store.Close()
				if id, err := store.AppendRunLog(ctx, topic, audience, result.Summary, result.Sources); err != nil {
					logger.Log.Warnf("failed to append run log: %v", err)
				} else {
					logger.Log.Infof("run logged as %s", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic to research (required)")
	cmd.Flags().StringVar(&audience, "audience", "", "audience tag, e.g. Youth")
	return cmd
}

func newKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Print today's trending keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			ctx := context.Background()

			if cfg.DB.Host == "" {
				logger.Log.Fatal("config error: db.host is not set (required for trend data and cache)")
			}
			store, err := storage.NewStorage(cfg.DB)
			if err != nil {
				logger.Log.Fatalf("cannot connect to database: %v", err)
			}
			defer store.Close()

			gen, err := llm.NewClient(ctx, cfg.LLM, cfg.Concurrency)
			if err != nil {
				logger.Log.Fatalf("llm init failed: %v", err)
			}

			pipeline := trends.NewPipeline(store, store, gen, trends.Options{
				WindowDays:    cfg.Trends.WindowDays,
				MinInterest:   cfg.Trends.MinInterest,
				RawTextBudget: cfg.Trends.RawTextBudget,
			})

			keywords := pipeline.TrendingKeywords(ctx)
			if len(keywords) == 0 {
				logger.Log.Warn("no trending keywords available, using the generic fallback set")
				keywords = fallbackKeywords
			}
			fmt.Println(strings.Join(keywords, ", "))
			return nil
		},
	}
}
