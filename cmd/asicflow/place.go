package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mazinbersy/asicflow/internal/anneal"
	"github.com/mazinbersy/asicflow/internal/emit"
	"github.com/mazinbersy/asicflow/internal/placer"
	"github.com/mazinbersy/asicflow/internal/report"
)

var placeCmd = &cobra.Command{
	Use:   "place",
	Args:  cobra.NoArgs,
	Short: "Run the greedy seeded placer",
	Long:  `Loads the fabric and design, runs the greedy placer, and writes a placement map.`,
	RunE:  runPlace,
}

func init() {
	placeCmd.Flags().String("design", "", "design name (e.g. 6502)")
	placeCmd.Flags().String("fabric-cells", "", "path to fabric_cells.yaml (default fabric/fabric_cells.yaml)")
	placeCmd.Flags().String("pins", "", "path to pins.yaml (default fabric/pins.yaml)")
	placeCmd.Flags().String("fabric", "", "path to fabric.yaml (default fabric/fabric.yaml)")
	placeCmd.Flags().String("output", "", "output directory (default build/[design]/)")
	placeCmd.Flags().Bool("anneal", false, "chain the SA refiner after greedy placement")
	placeCmd.MarkFlagRequired("design")
}

func runPlace(cmd *cobra.Command, args []string) error {
	designName, _ := cmd.Flags().GetString("design")
	cellsFlag, _ := cmd.Flags().GetString("fabric-cells")
	pinsFlag, _ := cmd.Flags().GetString("pins")
	fabricFlag, _ := cmd.Flags().GetString("fabric")
	outputFlag, _ := cmd.Flags().GetString("output")
	chainAnneal, _ := cmd.Flags().GetBool("anneal")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := newLogger(cfg)

	dp := defaultPaths(designName, outputFlag)
	if cellsFlag != "" {
		dp.cellsYAML = cellsFlag
	}
	if pinsFlag != "" {
		dp.pinsYAML = pinsFlag
	}
	if fabricFlag != "" {
		dp.fabricYAML = fabricFlag
	}
	if err := ensureOutputDir(dp.outputDir); err != nil {
		return err
	}

	log.Info("loading fabric and design", "design", designName)
	f, db, g, err := loadFabricAndDesign(dp, designName, log)
	if err != nil {
		return err
	}

	pins, err := placer.PinPositions(f, db)
	if err != nil {
		return fmt.Errorf("resolve port pin positions: %w", err)
	}

	log.Info("running greedy placer")
	p, err := placer.Place(f, db, g, pins, log)
	if err != nil {
		return fmt.Errorf("greedy place: %w", err)
	}

	stage := "place"
	if chainAnneal {
		log.Info("chaining SA refiner", "initial_temp", cfg.SA.InitialTemp)
		saCfg := anneal.Config{
			InitialTemp:   cfg.SA.InitialTemp,
			FinalTemp:     cfg.SA.FinalTemp,
			CoolingRate:   cfg.SA.CoolingRate,
			MovesPerTemp:  cfg.SA.MovesPerTemp,
			MaxIterations: cfg.SA.MaxIterations,
			ProbRefine:    cfg.SA.ProbRefine,
			ProbExplore:   cfg.SA.ProbExplore,
			WInitial:      cfg.SA.WInitial,
			Seed:          cfg.SA.Seed,
		}
		refined, stats := anneal.Refine(f, db, g, p, pins, saCfg, log)
		p = refined
		log.Info("SA refiner finished", "initial_cost", stats.InitialCost, "best_cost", stats.BestCost)
		stage = "place+anneal"
	}

	mapPath := filepath.Join(dp.outputDir, designName+".map")
	mapFile, err := os.Create(mapPath)
	if err != nil {
		return fmt.Errorf("create placement map: %w", err)
	}
	defer mapFile.Close()
	if err := emit.WritePlacementMap(mapFile, f, db, p); err != nil {
		return fmt.Errorf("write placement map: %w", err)
	}
	log.Info("wrote placement map", "path", mapPath)

	if storage, serr := report.NewStorage(dp.outputDir, false, 0, log); serr == nil {
		run := report.NewRun(stage, designName)
		run.Status = report.StatusOK
		run.Stats = map[string]interface{}{"placed_instances": p.Len()}
		if _, werr := storage.Save(run); werr != nil {
			log.Warn("failed to save run report", "error", werr)
		}
	}

	return nil
}
