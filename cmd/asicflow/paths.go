package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mazinbersy/asicflow/internal/config"
	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/designio"
	"github.com/mazinbersy/asicflow/internal/emit"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/fabricio"
	"github.com/mazinbersy/asicflow/internal/leakage"
	"github.com/mazinbersy/asicflow/internal/libertyio"
	"github.com/mazinbersy/asicflow/internal/logging"
	"github.com/mazinbersy/asicflow/internal/netgraph"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// loadConfig loads the flow config from --config (or its default path),
// falling back to defaults when absent, matching the teacher's
// "absent config file is not an error" policy.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "asicflow.yaml"
	}
	return config.Load(path)
}

func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.Level(cfg.Flow.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(cfg.Flow.LogFormat),
		Output: os.Stdout,
	})
}

// designPaths centralizes the default file-path conventions a design name
// expands to, mirroring make_def.py/eco_generator.py's positional-argument
// defaults (designs/<design>_mapped.json, fabric/*.yaml, build/<design>/*).
type designPaths struct {
	designJSON string
	cellsYAML  string
	pinsYAML   string
	fabricYAML string
	outputDir  string
}

func defaultPaths(designName, outputDir string) designPaths {
	if outputDir == "" {
		outputDir = filepath.Join("build", designName)
	}
	return designPaths{
		designJSON: filepath.Join("designs", designName+"_mapped.json"),
		cellsYAML:  filepath.Join("fabric", "fabric_cells.yaml"),
		pinsYAML:   filepath.Join("fabric", "pins.yaml"),
		fabricYAML: filepath.Join("fabric", "fabric.yaml"),
		outputDir:  outputDir,
	}
}

func loadFabricAndDesign(dp designPaths, designName string, log *logging.Logger) (*fabric.Fabric, *design.DB, *netgraph.Graph, error) {
	f, err := fabricio.Load(dp.cellsYAML, dp.pinsYAML, dp.fabricYAML, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load fabric: %w", err)
	}
	db, g, err := designio.LoadFile(dp.designJSON, designName, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load design: %w", err)
	}
	return f, db, g, nil
}

// loadPlacementMap parses a placement map written by emit.WritePlacementMap
// and resolves each occupied site back into a placement.Placement.
func loadPlacementMap(path string, f *fabric.Fabric) (*placement.Placement, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open placement map: %w", err)
	}
	defer file.Close()

	parsed, err := emit.ReadPlacementMap(file)
	if err != nil {
		return nil, fmt.Errorf("parse placement map: %w", err)
	}

	p := placement.New()
	for _, entry := range parsed.Sites {
		if entry.Mapped == "" || entry.Mapped == "UNUSED" {
			continue
		}
		site, ok := f.SiteByName(entry.Site)
		if !ok {
			continue
		}
		p.Place(design.InstID(entry.Mapped), site)
	}
	return p, nil
}

func loadLeakageDB(path string) (leakage.DB, error) {
	if path == "" {
		return leakage.DB{}, nil
	}
	return libertyio.ParseFile(path)
}

// writeVerilogWithRename runs the generate-then-rename Verilog pipeline
// (spec §4.H) as one call: emit against logical instance names, then
// rewrite those names to their placed fabric site names.
func writeVerilogWithRename(path, designName string, db *design.DB, p *placement.Placement, log *logging.Logger) error {
	var buf bytes.Buffer
	if err := emit.WriteVerilog(&buf, designName, db, log); err != nil {
		return fmt.Errorf("emit verilog: %w", err)
	}
	renamed := emit.RenameInstances(buf.String(), p)
	if err := os.WriteFile(path, []byte(renamed), 0o644); err != nil {
		return fmt.Errorf("write verilog: %w", err)
	}
	log.Info("wrote verilog", "path", path)
	return nil
}

func ensureOutputDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}
