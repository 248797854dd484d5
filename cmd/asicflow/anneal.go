package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mazinbersy/asicflow/internal/anneal"
	"github.com/mazinbersy/asicflow/internal/emit"
	"github.com/mazinbersy/asicflow/internal/metrics"
	"github.com/mazinbersy/asicflow/internal/placer"
	"github.com/mazinbersy/asicflow/internal/report"
)

var annealCmd = &cobra.Command{
	Use:   "anneal",
	Args:  cobra.NoArgs,
	Short: "Run the simulated-annealing placement refiner as its own stage",
	Long: `Loads an existing placement map and refines it with the SA engine.
Invoke this repeatedly (varying --config) to drive a parameter sweep; the
sweep driver itself is external to this tool.`,
	RunE: runAnneal,
}

func init() {
	annealCmd.Flags().String("design", "", "design name (e.g. 6502)")
	annealCmd.Flags().String("placement", "", "path to an existing placement .map file")
	annealCmd.Flags().String("output", "", "output directory (default build/[design]/)")
	annealCmd.Flags().String("metrics-addr", "", "if set, serve Prometheus metrics on this address while annealing")
	annealCmd.MarkFlagRequired("design")
}

func runAnneal(cmd *cobra.Command, args []string) error {
	designName, _ := cmd.Flags().GetString("design")
	placementFlag, _ := cmd.Flags().GetString("placement")
	outputFlag, _ := cmd.Flags().GetString("output")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := newLogger(cfg)

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

	pins, err := placer.PinPositions(f, db)
	if err != nil {
		return fmt.Errorf("resolve port pin positions: %w", err)
	}

	var reg *metrics.Registry
	if metricsAddr != "" {
		reg = metrics.New()
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		go func() {
			if serveErr := reg.Serve(ctx, metricsAddr); serveErr != nil {
				log.Warn("metrics server stopped", "error", serveErr)
			}
		}()
		log.Info("serving metrics", "addr", metricsAddr)
	}

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

	log.Info("running SA refiner", "initial_temp", saCfg.InitialTemp, "max_iterations", saCfg.MaxIterations)
	refined, stats := anneal.Refine(f, db, g, p, pins, saCfg, log)
	log.Info("SA refiner finished",
		"initial_cost", stats.InitialCost,
		"best_cost", stats.BestCost,
		"iterations", stats.Iterations,
		"improvements", stats.Improvements,
	)
	if reg != nil {
		reg.HPWLHistory.Set(stats.BestCost)
		reg.AnnealAccepted.WithLabelValues("refine", "accepted").Add(float64(stats.AcceptedRefine))
		reg.AnnealAccepted.WithLabelValues("refine", "rejected").Add(float64(stats.RejectedRefine))
		reg.AnnealAccepted.WithLabelValues("explore", "accepted").Add(float64(stats.AcceptedExplore))
		reg.AnnealAccepted.WithLabelValues("explore", "rejected").Add(float64(stats.RejectedExplore))
	}

	mapPath := filepath.Join(dp.outputDir, designName+"_annealed.map")
	mapFile, err := os.Create(mapPath)
	if err != nil {
		return fmt.Errorf("create placement map: %w", err)
	}
	defer mapFile.Close()
	if err := emit.WritePlacementMap(mapFile, f, db, refined); err != nil {
		return fmt.Errorf("write placement map: %w", err)
	}
	log.Info("wrote refined placement map", "path", mapPath)

	if storage, serr := report.NewStorage(dp.outputDir, false, 0, log); serr == nil {
		run := report.NewRun("anneal", designName)
		run.Status = report.StatusOK
		run.Stats = map[string]interface{}{
			"initial_cost": stats.InitialCost,
			"best_cost":    stats.BestCost,
			"iterations":   stats.Iterations,
		}
		if _, werr := storage.Save(run); werr != nil {
			log.Warn("failed to save run report", "error", werr)
		}
	}

	return nil
}
