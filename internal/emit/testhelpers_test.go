package emit

import (
	"testing"

	"github.com/mazinbersy/asicflow/internal/design"
	"github.com/mazinbersy/asicflow/internal/fabric"
	"github.com/mazinbersy/asicflow/internal/placement"
)

// newTestPlacement builds a minimal fabric with one NAND2_2 site and
// places U0 on it, for emitter tests.
func newTestPlacement(t *testing.T) *placement.Placement {
	t.Helper()
	site := &fabric.Site{Name: "NAND_0", CellType: "NAND2_2", X: 10, Y: 10, WidthUM: 1.38, HeightUM: 2.72}
	p := placement.New()
	p.Place(design.InstID("U0"), site)
	return p
}
