package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mazinbersy/asicflow/internal/flowerrors"
	"github.com/mazinbersy/asicflow/internal/visualize"
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Args:  cobra.NoArgs,
	Short: "Prepare layout/density/congestion/slack/CTS data for rendering",
	Long: `Drives the visualization data-preparation stages and reports, per stage,
whether it produced data, was skipped, or hit a soft missing-input or a
hard failure. Emits no plots itself.`,
	RunE: runVisualize,
}

func init() {
	visualizeCmd.Flags().String("design", "", "design name (e.g. 6502)")
	visualizeCmd.Flags().StringSlice("only", nil, "only run these stages")
	visualizeCmd.Flags().StringSlice("skip", nil, "skip these stages")
	visualizeCmd.Flags().String("map", "", "path to placement .map file (default build/[design]/[design].map)")
	visualizeCmd.Flags().Bool("strict", false, "treat missing-input stages as failures")
	visualizeCmd.MarkFlagRequired("design")
}

func runVisualize(cmd *cobra.Command, args []string) error {
	designName, _ := cmd.Flags().GetString("design")
	only, _ := cmd.Flags().GetStringSlice("only")
	skip, _ := cmd.Flags().GetStringSlice("skip")
	mapFlag, _ := cmd.Flags().GetString("map")
	strict, _ := cmd.Flags().GetBool("strict")

	cliCfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := newLogger(cliCfg)

	dp := defaultPaths(designName, "")
	mapPath := mapFlag
	if mapPath == "" {
		mapPath = filepath.Join(dp.outputDir, designName+".map")
	}

	f, _, _, err := loadFabricAndDesign(dp, designName, log)
	if err != nil {
		return err
	}
	p, err := loadPlacementMap(mapPath, f)
	if err != nil {
		return fmt.Errorf("load placement map: %w", err)
	}

	stages := []visualize.Stage{
		{Name: "layout", Run: func() (interface{}, error) {
			return visualize.BuildLayoutSnapshot(designName, f, p), nil
		}},
		{Name: "density", Run: func() (interface{}, error) {
			return visualize.BuildDensityGrid(designName, f, p, 32, 32), nil
		}},
		{Name: "congestion", Run: func() (interface{}, error) {
			rptPath := filepath.Join(dp.outputDir, designName+"_congestion.rpt")
			file, err := os.Open(rptPath)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, &flowerrors.MissingInputError{Path: rptPath}
				}
				return nil, err
			}
			defer file.Close()
			points, err := visualize.ParseCongestionReport(file)
			if err != nil {
				return nil, err
			}
			return visualize.BuildCongestionGrid(designName, points, 32, 32), nil
		}},
		{Name: "slack", Run: func() (interface{}, error) {
			rptPath := filepath.Join(dp.outputDir, designName+"_setup_timing.rpt")
			slacks, err := visualize.ParseSlackReport(rptPath)
			if err != nil {
				return nil, err
			}
			return visualize.BuildSlackSummary(designName, slacks, ""), nil
		}},
	}

	results, runErr := visualize.RunAll(stages, only, skip, strict)
	for _, r := range results {
		fmt.Println(r.String())
	}

	if runErr != nil {
		return runErr
	}
	return writeSnapshotJSON(dp.outputDir, designName, results)
}

func writeSnapshotJSON(outputDir, designName string, results []visualize.Result) error {
	data := make(map[string]interface{}, len(results))
	for _, r := range results {
		if r.OK {
			data[r.Stage] = r.Data
		}
	}
	if len(data) == 0 {
		return nil
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal visualization snapshot: %w", err)
	}
	path := filepath.Join(outputDir, designName+"_viz.json")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write visualization snapshot: %w", err)
	}
	return nil
}
