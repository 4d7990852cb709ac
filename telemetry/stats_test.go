package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/density"
	"github.com/pthm-cable/arcglobe/geom"
	"github.com/pthm-cable/arcglobe/sampler"
)

func weightsFrom(pdf ...float64) []sampler.TriangleWeight {
	w := make([]sampler.TriangleWeight, len(pdf))
	cdf := 0.0
	for i, p := range pdf {
		cdf += p
		w[i] = sampler.TriangleWeight{Index: i, PDF: p, CDF: cdf}
	}
	return w
}

func TestNewSamplingReport(t *testing.T) {
	tests := []struct {
		name          string
		pdf           []float64
		wantWeighted  int
		wantEffective float64
	}{
		{"uniform four", []float64{0.25, 0.25, 0.25, 0.25}, 4, 4},
		{"single spike", []float64{0, 1, 0, 0}, 1, 1},
		{"half zero", []float64{0.5, 0, 0.5, 0}, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSamplingReport(sampler.Arrival, 3.0, weightsFrom(tt.pdf...), 2)
			if r.Channel != "arrival" || r.Triangles != len(tt.pdf) || r.Skipped != 2 {
				t.Errorf("header fields = %+v", r)
			}
			if r.Weighted != tt.wantWeighted {
				t.Errorf("weighted = %d, want %d", r.Weighted, tt.wantWeighted)
			}
			if math.Abs(r.EffectiveTriangles-tt.wantEffective) > 1e-9 {
				t.Errorf("effective = %v, want %v", r.EffectiveTriangles, tt.wantEffective)
			}
			if math.Abs(r.FinalCDF-1) > 1e-12 {
				t.Errorf("final cdf = %v", r.FinalCDF)
			}
			if math.Abs(r.PDFMean-1.0/float64(len(tt.pdf))) > 1e-12 {
				t.Errorf("mean = %v", r.PDFMean)
			}
		})
	}
}

func TestNewSamplingReportEmpty(t *testing.T) {
	r := NewSamplingReport(sampler.Destination, 0, nil, 0)
	if r.Triangles != 0 || r.EffectiveTriangles != 0 || r.PDFStd != 0 {
		t.Errorf("empty report = %+v", r)
	}

	single := NewSamplingReport(sampler.Destination, 1, weightsFrom(1), 0)
	if math.IsNaN(single.PDFStd) {
		t.Error("single triangle std should not be NaN")
	}
}

func TestReportSampler(t *testing.T) {
	s := sampler.New(geom.UVSphere(1, 8, 16), geom.Identity(), density.Uniform(1, 0.5))
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}

	reports := ReportSampler(s)
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	for _, r := range reports {
		if r.Triangles != len(s.Areas()) {
			t.Errorf("%s: triangles = %d", r.Channel, r.Triangles)
		}
		// Uniform density on a sphere still favors the larger equatorial triangles
		if r.EffectiveTriangles <= 1 || r.EffectiveTriangles > float64(r.Triangles)+1e-9 {
			t.Errorf("%s: effective = %v of %d", r.Channel, r.EffectiveTriangles, r.Triangles)
		}
	}
	if math.Abs(reports[1].Total*2-reports[0].Total) > 1e-9 {
		t.Errorf("destination total %v should be half arrival %v", reports[1].Total, reports[0].Total)
	}

	rows := WeightRows(s)
	if len(rows) != len(s.Areas()) {
		t.Fatalf("weight rows = %d", len(rows))
	}
	last := rows[len(rows)-1]
	if math.Abs(last.ArrivalCDF-1) > 1e-9 || math.Abs(last.DestinationCDF-1) > 1e-9 {
		t.Errorf("last row = %+v", last)
	}
}

func TestLinkRows(t *testing.T) {
	rows := LinkRows([]sampler.LinkPair{
		{From: r3.Vec{X: 1}, To: r3.Vec{X: 4, Y: 4}},
	})
	if len(rows) != 1 {
		t.Fatal("expected one row")
	}
	if rows[0].Chord != 5 || rows[0].ToY != 4 || rows[0].FromX != 1 {
		t.Errorf("row = %+v", rows[0])
	}
}
