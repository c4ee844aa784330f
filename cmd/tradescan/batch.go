package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seongmin-k/tradescan/internal/export"
	"github.com/seongmin-k/tradescan/internal/pipeline"
)

var (
	batchEngine  string
	batchWorkers int
	batchOutDir  string
	batchXLSX    string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file-or-dir>...",
	Short: "Process many PDFs concurrently and write results to disk",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := resolveEngine(batchEngine)
		if err != nil {
			return err
		}
		paths, err := collectPDFs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no PDF files found under %s", strings.Join(args, ", "))
		}

		cfg := cfgManager.Get()
		workers := batchWorkers
		if workers <= 0 {
			workers = cfg.Pipeline.Workers
		}
		outDir := batchOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		proc, _ := buildProcessor()
		runner := pipeline.NewBatchRunner(proc, workers, nil)
		batch := runner.Run(cmd.Context(), paths, engine)

		for _, r := range batch.Results {
			if _, err := export.WriteJSON(r, outDir); err != nil {
				return fmt.Errorf("write result for %s: %w", r.FileName, err)
			}
		}
		if batchXLSX != "" {
			if err := export.WriteWorkbook(batch.Results, batchXLSX); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d succeeded, %d failed in %.1fs, results in %s\n",
			batch.RunID, batch.Succeeded, batch.Failed, batch.DurationSeconds, outDir)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchEngine, "engine", "", "preferred extraction engine")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent files (default from config)")
	batchCmd.Flags().StringVar(&batchOutDir, "output-dir", "", "directory for result JSON files (default from config)")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "also write an XLSX summary workbook to this path")
}

// collectPDFs expands arguments into a sorted list of PDF file paths.
// Directories are walked recursively.
func collectPDFs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !st.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".pdf") {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}

	sort.Strings(paths)
	return paths, nil
}
