package lefio

import "testing"

const sampleTLEF = `
VERSION 5.8 ;
UNITS
  DATABASE MICRONS 1000 ;
END UNITS
MANUFACTURINGGRID 0.005 ;

SITE unit_site
  CLASS CORE ;
  SIZE 0.46 BY 2.72 ;
END unit_site

LAYER li1
  TYPE ROUTING ;
  DIRECTION HORIZONTAL ;
  WIDTH 0.17 ;
END li1

LAYER met1
  TYPE ROUTING ;
  DIRECTION VERTICAL ;
  WIDTH 0.14 ;
END met1
`

func TestParseTechExtractsUnitsGridSitesLayers(t *testing.T) {
	tech := ParseTech(sampleTLEF)

	if tech.Version != "5.8" {
		t.Errorf("Version = %q, want 5.8", tech.Version)
	}
	if tech.DBUPerMicron != 1000 {
		t.Errorf("DBUPerMicron = %d, want 1000", tech.DBUPerMicron)
	}
	if tech.ManufacturingGrid != 0.005 {
		t.Errorf("ManufacturingGrid = %v, want 0.005", tech.ManufacturingGrid)
	}

	site, ok := tech.Sites["unit_site"]
	if !ok {
		t.Fatalf("unit_site not found")
	}
	if site.WidthUM != 0.46 || site.HeightUM != 2.72 || site.Class != "CORE" {
		t.Errorf("unit_site = %+v, want width 0.46 height 2.72 class CORE", site)
	}

	li1, ok := tech.Layers["li1"]
	if !ok {
		t.Fatalf("li1 layer not found")
	}
	if li1.Type != "ROUTING" || li1.Direction != "HORIZONTAL" || li1.WidthUM != 0.17 {
		t.Errorf("li1 = %+v, want ROUTING HORIZONTAL 0.17", li1)
	}

	met1, ok := tech.Layers["met1"]
	if !ok || met1.Direction != "VERTICAL" {
		t.Errorf("met1 = %+v, want VERTICAL", met1)
	}
}

func TestParseTechFileMissingPathDegradesToDefault(t *testing.T) {
	tech, err := ParseTechFile("")
	if err != nil {
		t.Fatalf("ParseTechFile(\"\"): %v", err)
	}
	if tech.DBUPerMicron != DefaultTech().DBUPerMicron {
		t.Errorf("ParseTechFile(\"\") did not degrade to defaults")
	}

	tech2, err := ParseTechFile("/nonexistent/path/to.tlef")
	if err != nil {
		t.Fatalf("ParseTechFile(missing): %v", err)
	}
	if len(tech2.Sites) != 0 {
		t.Errorf("expected empty site table for missing file")
	}
}
