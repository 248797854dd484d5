package design

import "testing"

func TestNewIsEmpty(t *testing.T) {
	db := New()
	if len(db.Cells) != 0 || len(db.Nets) != 0 {
		t.Fatal("New() should start with no cells or nets")
	}
	if db.Ports.Inputs == nil || db.Ports.Outputs == nil {
		t.Fatal("New() should initialize both port maps")
	}
}

func TestEnsureNetCreatesOnce(t *testing.T) {
	db := New()
	n1 := db.EnsureNet(5, "clk")
	n2 := db.EnsureNet(5, "ignored")
	if n1 != n2 {
		t.Error("EnsureNet should return the same net on repeated calls for the same id")
	}
	if n1.Name != "clk" {
		t.Errorf("n1.Name = %q, want clk (name only set on first creation)", n1.Name)
	}
}

func TestAllocNetIDStrictlyIncreasesPastExisting(t *testing.T) {
	db := New()
	db.EnsureNet(10, "a")
	id := db.AllocNetID()
	if id <= 10 {
		t.Errorf("AllocNetID() = %d, want > 10", id)
	}
	second := db.AllocNetID()
	if second <= id {
		t.Errorf("second AllocNetID() = %d, want > %d", second, id)
	}
}

func TestAddCellIndexesByType(t *testing.T) {
	db := New()
	db.AddCell(&Cell{Name: "u1", Type: "DFF"})
	db.AddCell(&Cell{Name: "u2", Type: "DFF"})
	db.AddCell(&Cell{Name: "u3", Type: "LOGIC"})

	if got := len(db.CellsByType["DFF"]); got != 2 {
		t.Errorf("CellsByType[DFF] has %d entries, want 2", got)
	}
	if got := len(db.CellsByType["LOGIC"]); got != 1 {
		t.Errorf("CellsByType[LOGIC] has %d entries, want 1", got)
	}
}

func TestAddAndRemoveConnection(t *testing.T) {
	db := New()
	db.AddCell(&Cell{Name: "u1", Type: "DFF"})
	db.AddCell(&Cell{Name: "u2", Type: "LOGIC"})

	db.AddConnection(1, "u1", "Q")
	db.AddConnection(1, "u2", "A")

	net := db.Nets[1]
	if len(net.Connections) != 2 {
		t.Fatalf("net.Connections has %d entries, want 2", len(net.Connections))
	}
	if db.Cells["u1"].Pins["Q"] != 1 {
		t.Errorf("u1.Pins[Q] = %d, want 1", db.Cells["u1"].Pins["Q"])
	}

	db.RemoveConnection(1, "u1", "Q")
	if len(db.Nets[1].Connections) != 1 {
		t.Fatalf("after RemoveConnection, net.Connections has %d entries, want 1", len(db.Nets[1].Connections))
	}
	if db.Nets[1].Connections[0].Cell != "u2" {
		t.Errorf("remaining connection = %+v, want u2", db.Nets[1].Connections[0])
	}
	if db.Cells["u1"].Pins["Q"] != 1 {
		t.Error("RemoveConnection should not touch the cell's own pin map")
	}
}

func TestRemoveConnectionOnUnknownNetIsNoop(t *testing.T) {
	db := New()
	db.RemoveConnection(99, "nope", "X")
}

func TestSortedInstIDsAndNetIDs(t *testing.T) {
	db := New()
	db.AddCell(&Cell{Name: "b", Type: "DFF"})
	db.AddCell(&Cell{Name: "a", Type: "DFF"})
	db.EnsureNet(3, "")
	db.EnsureNet(1, "")

	insts := db.SortedInstIDs()
	if len(insts) != 2 || insts[0] != "a" || insts[1] != "b" {
		t.Errorf("SortedInstIDs() = %v, want [a b]", insts)
	}

	nets := db.SortedNetIDs()
	if len(nets) != 2 || nets[0] != 1 || nets[1] != 3 {
		t.Errorf("SortedNetIDs() = %v, want [1 3]", nets)
	}
}

func TestIsPort(t *testing.T) {
	port := &Cell{Name: "clk", Type: PortCellType}
	gate := &Cell{Name: "u1", Type: "DFF"}
	if !port.IsPort() {
		t.Error("port cell should report IsPort() true")
	}
	if gate.IsPort() {
		t.Error("gate cell should report IsPort() false")
	}
}
