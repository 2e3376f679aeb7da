package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/noteorg/internal/api"
	"github.com/pbaille/noteorg/internal/domain"
	"github.com/pbaille/noteorg/internal/logging"
	"github.com/pbaille/noteorg/internal/store"
)

func historyCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(limit, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs yet. Use 'noteorg -i <notes> -o <dir>' to organize some notes.")
				return nil
			}

			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  %3d notes  %s -> %s\n",
					shortID(r.ID), r.StartedAt.Format("2006-01-02 15:04:05"), r.NumRecords, r.InputDir, r.OutputDir)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func showCmd(g *globals) *cobra.Command {
	var decision string

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the notes classified in a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter domain.Decision
			if decision != "" {
				d, ok := domain.ParseDecision(decision)
				if !ok {
					return fmt.Errorf("decision must be keep or trash, got %q", decision)
				}
				filter = d
			}

			s, err := g.openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.ResolveRun(args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run not found: %s", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", run.ID)
			fmt.Fprintf(out, "Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Input:   %s\n", run.InputDir)
			fmt.Fprintf(out, "Output:  %s\n", run.OutputDir)
			if run.AuditPath != "" {
				fmt.Fprintf(out, "Audit:   %s\n", run.AuditPath)
			}

			if len(run.Records) > 0 {
				fmt.Fprintf(out, "\nNotes:\n")
			}
			for _, r := range run.Records {
				if filter != "" && r.Decision != filter {
					continue
				}
				fmt.Fprintf(out, "  %-5s %s  [%s]\n", r.Decision, r.Filename, strings.Join(r.Tags, ", "))
				if r.Explanation != "" {
					fmt.Fprintf(out, "        %s\n", truncate(r.Explanation, 100))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "only show keep or trash")
	return cmd
}

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run history as a JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.openStore(cmd)
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			logger, err := logging.New(g.debug)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			server := api.New(s, addr, logger)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

func (g *globals) openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return getStore(cfg.DatabasePath)
}
