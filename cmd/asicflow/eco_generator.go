package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mazinbersy/asicflow/internal/cts"
	"github.com/mazinbersy/asicflow/internal/eco"
	"github.com/mazinbersy/asicflow/internal/emit"
	"github.com/mazinbersy/asicflow/internal/report"
)

// ecoGeneratorCmd matches spec.md §6's "eco_generator" command exactly:
// full CTS + ECO + Verilog emission from an existing placement.
var ecoGeneratorCmd = &cobra.Command{
	Use:   "eco_generator",
	Args:  cobra.NoArgs,
	Short: "Run H-tree CTS, the power-down ECO, and Verilog emission",
	RunE:  runECOGenerator,
}

func init() {
	ecoGeneratorCmd.Flags().String("design", "", "design name (e.g. 6502)")
	ecoGeneratorCmd.Flags().String("placement", "", "path to placement.map file")
	ecoGeneratorCmd.Flags().String("output", "", "output directory (default: build/[design]/)")
	ecoGeneratorCmd.MarkFlagRequired("design")
}

func runECOGenerator(cmd *cobra.Command, args []string) error {
	designName, _ := cmd.Flags().GetString("design")
	placementFlag, _ := cmd.Flags().GetString("placement")
	outputFlag, _ := cmd.Flags().GetString("output")

	cliCfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := newLogger(cliCfg)

	dp := defaultPaths(designName, outputFlag)
	if err := ensureOutputDir(dp.outputDir); err != nil {
		return err
	}
	if placementFlag == "" {
		placementFlag = filepath.Join(dp.outputDir, designName+".map")
	}

	f, db, g, err := loadFabricAndDesign(dp, designName, log)
	if err != nil {
		return err
	}
	p, err := loadPlacementMap(placementFlag, f)
	if err != nil {
		return fmt.Errorf("load placement map: %w", err)
	}

	clockPort := cliCfg.CTS.ClockPort
	if clockPort == "" {
		detected, ok := cts.DetectClockPort(db)
		if !ok {
			return fmt.Errorf("detect clock port: no candidate found and none configured")
		}
		clockPort = detected
	}

	log.Info("running H-tree CTS", "clock_port", clockPort)
	ctsResult, err := cts.Synthesize(f, db, g, p, clockPort, log)
	if err != nil {
		return fmt.Errorf("CTS: %w", err)
	}
	log.Info("CTS finished", "old_clock_net", ctsResult.OldClockNet)

	ctsMapPath := filepath.Join(dp.outputDir, designName+"_cts.map")
	if mapFile, merr := os.Create(ctsMapPath); merr == nil {
		if werr := emit.WritePlacementMap(mapFile, f, db, p); werr != nil {
			mapFile.Close()
			return fmt.Errorf("write CTS placement map: %w", werr)
		}
		mapFile.Close()
		log.Info("wrote CTS placement map", "path", ctsMapPath)
	} else {
		return fmt.Errorf("create CTS placement map: %w", merr)
	}

	leak, err := loadLeakageDB(cliCfg.ECO.LibertyPath)
	if err != nil {
		return fmt.Errorf("load liberty leakage data: %w", err)
	}

	log.Info("running power-down ECO")
	ecoReport, err := eco.Run(f, db, g, p, leak, log)
	if err != nil {
		return fmt.Errorf("ECO: %w", err)
	}
	log.Info("ECO finished",
		"cells_tied", ecoReport.TotalCellsTied,
		"pins_tied", ecoReport.TotalPinsTied,
		"tied_hi", ecoReport.TiedHI,
		"tied_lo", ecoReport.TiedLO,
	)

	verilogPath := filepath.Join(dp.outputDir, designName+".v")
	if err := writeVerilogWithRename(verilogPath, designName, db, p, log); err != nil {
		return err
	}

	if storage, serr := report.NewStorage(dp.outputDir, false, 0, log); serr == nil {
		run := report.NewRun("eco_generator", designName)
		run.Status = report.StatusOK
		run.Stats = map[string]interface{}{
			"cells_tied": ecoReport.TotalCellsTied,
			"pins_tied":  ecoReport.TotalPinsTied,
			"tied_hi":    ecoReport.TiedHI,
			"tied_lo":    ecoReport.TiedLO,
		}
		if _, werr := storage.Save(run); werr != nil {
			log.Warn("failed to save run report", "error", werr)
		}
	}

	return nil
}
