package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seongmin-k/tradescan/internal/export"
)

var (
	processEngine string
	processSave   bool
)

var processCmd = &cobra.Command{
	Use:   "process <file.pdf>",
	Short: "Process a single PDF and print the result JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := resolveEngine(processEngine)
		if err != nil {
			return err
		}

		proc, _ := buildProcessor()
		result := proc.Process(cmd.Context(), args[0], engine)

		if processSave {
			outDir := cfgManager.Get().Output.Dir
			path, err := export.WriteJSON(result, outDir)
			if err != nil {
				return fmt.Errorf("save result: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "saved", path)
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processEngine, "engine", "", "preferred extraction engine")
	processCmd.Flags().BoolVar(&processSave, "save", false, "also write the result into the output directory")
}
