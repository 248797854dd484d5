package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	version = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "asicflow",
	Short: "Back-end physical design flow for a structured ASIC fabric",
	Long: `asicflow places, refines, clocks, and power-down-ECOs a netlist onto a
fixed structured-ASIC site fabric, then emits DEF/Verilog/placement-map
views of the result.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./asicflow.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(annealCmd)
	rootCmd.AddCommand(ecoGeneratorCmd)
	rootCmd.AddCommand(makeDefCmd)
	rootCmd.AddCommand(visualizeCmd)
}

// Commands are defined in separate files:
// - placeCmd in place.go
// - annealCmd in anneal.go
// - ecoGeneratorCmd in eco_generator.go
// - makeDefCmd in make_def.go
// - visualizeCmd in visualize.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
