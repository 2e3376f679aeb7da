package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/noteorg/internal/classifier"
	"github.com/pbaille/noteorg/internal/config"
	"github.com/pbaille/noteorg/internal/domain"
	"github.com/pbaille/noteorg/internal/logging"
	"github.com/pbaille/noteorg/internal/pipeline"
	"github.com/pbaille/noteorg/internal/store"
)

// globals holds the persistent flags shared by every command
type globals struct {
	configPath string
	dbPath     string
	debug      bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	var (
		input      string
		output     string
		extensions []string
		quiet      bool
		noLedger   bool
	)

	rootCmd := &cobra.Command{
		Use:   "noteorg",
		Short: "Sort notes into keep and junk with automatic tagging",
		Long: `noteorg walks a directory of notes, asks a language model whether each
one is worth keeping, and writes it to <output>/keep (with tags and date
frontmatter) or <output>/junk. Notes already present in either bucket are
skipped, so runs can be repeated safely.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if info, err := os.Stat(input); err != nil || !info.IsDir() {
				return fmt.Errorf("input directory %q does not exist", input)
			}

			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ext") {
				cfg.Extensions = extensions
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(g.debug)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			clf, err := newClassifier(cfg, logger, quiet)
			if err != nil {
				return err
			}

			opts := []pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithExtensions(cfg.Extensions...),
				pipeline.WithOutputExtension(cfg.OutputExtension),
			}
			if !noLedger {
				s, err := getStore(cfg.DatabasePath)
				if err != nil {
					logger.Warn("run ledger unavailable", zap.String("path", cfg.DatabasePath), zap.Error(err))
				} else {
					defer s.Close()
					opts = append(opts, pipeline.WithRecorder(s))
				}
			}

			report, err := pipeline.New(clf, opts...).Run(context.Background(), input, output)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&g.dbPath, "db", config.DefaultDatabasePath(), "run ledger database path")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "human-readable debug logging")

	rootCmd.Flags().StringVarP(&input, "input", "i", "", "directory containing the notes")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "directory where keep/ and junk/ are created")
	rootCmd.Flags().StringSliceVar(&extensions, "ext", nil, "input extensions to process (default .txt)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not echo classifier replies")
	rootCmd.Flags().BoolVar(&noLedger, "no-ledger", false, "do not record the run in the ledger")
	rootCmd.MarkFlagRequired("input")
	rootCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(historyCmd(g))
	rootCmd.AddCommand(showCmd(g))
	rootCmd.AddCommand(serveCmd(g))

	return rootCmd
}

func (g *globals) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.DatabasePath = g.dbPath
	}
	return cfg, nil
}

func newClassifier(cfg *config.Config, logger *zap.Logger, quiet bool) (*classifier.Classifier, error) {
	streamer, err := classifier.NewOpenAI(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := classifier.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	opts := []classifier.Option{
		classifier.WithPolicy(policy),
		classifier.WithLogger(logger),
	}
	if !quiet {
		opts = append(opts, classifier.WithProgress(os.Stderr))
	}

	counter, err := classifier.NewTiktoken(cfg.Model)
	if err != nil {
		logger.Warn("token counting disabled", zap.Error(err))
	} else {
		opts = append(opts, classifier.WithTokenCounter(counter))
	}

	return classifier.New(streamer, opts...), nil
}

func getStore(dbPath string) (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

func printReport(w io.Writer, report *pipeline.Report) {
	fmt.Fprintf(w, "Kept %d, trashed %d, skipped %d, failed %d.\n",
		report.Count(domain.OutcomeKept),
		report.Count(domain.OutcomeTrashed),
		report.Count(domain.OutcomeSkipped),
		report.Count(domain.OutcomeFailed),
	)
	for _, f := range report.Files {
		if f.Outcome == domain.OutcomeFailed {
			fmt.Fprintf(w, "  failed: %s: %v\n", f.Source, f.Err)
		}
	}
	if report.Run.AuditPath != "" {
		fmt.Fprintf(w, "Wrote %s\n", report.Run.AuditPath)
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
