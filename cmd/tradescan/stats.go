package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seongmin-k/tradescan/internal/pipeline"
)

var statsEngine string

var statsCmd = &cobra.Command{
	Use:   "stats <file-or-dir>...",
	Short: "Process files and print per-engine extraction statistics",
	Long: `Runs the pipeline over the given files like batch, but prints only the
per-engine success/failure statistics instead of per-file results. Useful
for judging which engines carry a document set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := resolveEngine(statsEngine)
		if err != nil {
			return err
		}
		paths, err := collectPDFs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no PDF files found")
		}

		proc, stats := buildProcessor()
		runner := pipeline.NewBatchRunner(proc, cfgManager.Get().Pipeline.Workers, nil)
		batch := runner.Run(cmd.Context(), paths, engine)

		out := struct {
			Files     int `json:"files"`
			Succeeded int `json:"succeeded"`
			Failed    int `json:"failed"`
			Engines   any `json:"engines"`
		}{
			Files:     len(paths),
			Succeeded: batch.Succeeded,
			Failed:    batch.Failed,
			Engines:   stats.Snapshot(),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsEngine, "engine", "", "preferred extraction engine")
}
