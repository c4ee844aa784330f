package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seongmin-k/tradescan/internal/config"
	"github.com/seongmin-k/tradescan/internal/document"
	"github.com/seongmin-k/tradescan/internal/pipeline"
	"github.com/seongmin-k/tradescan/internal/providers"
	"github.com/seongmin-k/tradescan/version"
)

var (
	cfgFile string
	verbose bool

	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "tradescan",
	Short: "Trade document PDF processing pipeline",
	Long: `Tradescan ingests PDF trade documents (invoices, bills of lading,
tax invoices, export declarations, remittance advices) and produces
structured JSON results.

The pipeline includes:
  - Multi-engine text extraction with automatic fallback
  - Per-page document type scoring and boundary detection
  - Pattern-based field extraction with confidence scoring
  - JSON and XLSX result export`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tradescan/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Secrets may live in a local .env file.
		_ = godotenv.Load()

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfgManager, err = config.NewManager(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	}

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildProcessor assembles the pipeline from the loaded config.
func buildProcessor() (*pipeline.Processor, *providers.Stats) {
	cfg := cfgManager.Get()
	stats := providers.NewStats()
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Registry:        cfg.BuildRegistry(),
		Stats:           stats,
		ProviderTimeout: cfg.ProviderTimeout(),
	})
	proc := pipeline.NewProcessor(pipeline.ProcessorConfig{
		Orchestrator: orch,
		FileTimeout:  cfg.FileTimeout(),
	})
	return proc, stats
}

// resolveEngine validates an --engine flag value, falling back to the
// configured preference.
func resolveEngine(flagValue string) (document.Engine, error) {
	name := flagValue
	if name == "" {
		name = cfgManager.Get().Pipeline.PreferredEngine
	}
	if name == "" {
		return "", nil
	}
	engine, ok := document.ParseEngine(name)
	if !ok {
		return "", fmt.Errorf("unknown engine %q (valid: upstage, native, layout, tesseract)", name)
	}
	return engine, nil
}
