package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/arcglobe/sampler"
)

// SamplingReport summarizes one channel's weight table after Prepare.
type SamplingReport struct {
	Channel   string  `csv:"channel"`
	Triangles int     `csv:"triangles"`
	Weighted  int     `csv:"weighted"` // Triangles with nonzero pdf
	Total     float64 `csv:"total"`    // Unnormalized weighted area

	// pdf distribution over triangles
	PDFMean float64 `csv:"pdf_mean"`
	PDFStd  float64 `csv:"pdf_std"`
	PDFP50  float64 `csv:"pdf_p50"`
	PDFP90  float64 `csv:"pdf_p90"`
	PDFMax  float64 `csv:"pdf_max"`

	// exp(entropy): how many equally likely triangles the table behaves like
	EffectiveTriangles float64 `csv:"effective_triangles"`

	FinalCDF float64 `csv:"final_cdf"`
	Skipped  int     `csv:"skipped"`
}

// NewSamplingReport computes the report for one channel table.
func NewSamplingReport(ch sampler.Channel, total float64, weights []sampler.TriangleWeight, skipped int) SamplingReport {
	r := SamplingReport{
		Channel:   ch.String(),
		Triangles: len(weights),
		Total:     total,
		Skipped:   skipped,
	}
	if len(weights) == 0 {
		return r
	}

	pdf := make([]float64, len(weights))
	for i, w := range weights {
		pdf[i] = w.PDF
		if w.PDF > 0 {
			r.Weighted++
		}
	}
	r.FinalCDF = weights[len(weights)-1].CDF
	r.PDFMean, r.PDFStd = stat.MeanStdDev(pdf, nil)
	if math.IsNaN(r.PDFStd) {
		r.PDFStd = 0
	}

	sorted := append([]float64(nil), pdf...)
	sort.Float64s(sorted)
	r.PDFP50 = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	r.PDFP90 = stat.Quantile(0.9, stat.LinInterp, sorted, nil)
	r.PDFMax = sorted[len(sorted)-1]

	if total > 0 {
		r.EffectiveTriangles = math.Exp(stat.Entropy(pdf))
	}
	return r
}

// ReportSampler builds a report per channel from a prepared sampler. Skipped
// counts only the draws made so far, so call it after sampling.
func ReportSampler(s *sampler.SurfaceSampler) []SamplingReport {
	reports := make([]SamplingReport, 0, len(sampler.Channels))
	for _, ch := range sampler.Channels {
		reports = append(reports, NewSamplingReport(ch, s.Total(ch), s.Weights(ch), s.Skipped(ch)))
	}
	return reports
}

// LogValue implements slog.LogValuer for structured logging.
func (r SamplingReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("channel", r.Channel),
		slog.Int("triangles", r.Triangles),
		slog.Int("weighted", r.Weighted),
		slog.Float64("total", r.Total),
		slog.Float64("pdf_mean", r.PDFMean),
		slog.Float64("pdf_std", r.PDFStd),
		slog.Float64("pdf_p50", r.PDFP50),
		slog.Float64("pdf_p90", r.PDFP90),
		slog.Float64("pdf_max", r.PDFMax),
		slog.Float64("effective_triangles", r.EffectiveTriangles),
		slog.Float64("final_cdf", r.FinalCDF),
		slog.Int("skipped", r.Skipped),
	)
}

// LogStats logs the report using slog.
func (r SamplingReport) LogStats() {
	slog.Info("sampling", "report", r)
}

// WeightRow is one triangle's weights in both channels, for weights.csv.
type WeightRow struct {
	Index          int     `csv:"triangle"`
	Area           float64 `csv:"area"`
	ArrivalPDF     float64 `csv:"arrival_pdf"`
	ArrivalCDF     float64 `csv:"arrival_cdf"`
	DestinationPDF float64 `csv:"destination_pdf"`
	DestinationCDF float64 `csv:"destination_cdf"`
}

// WeightRows flattens a prepared sampler's tables.
func WeightRows(s *sampler.SurfaceSampler) []WeightRow {
	areas := s.Areas()
	arrival := s.Weights(sampler.Arrival)
	destination := s.Weights(sampler.Destination)

	rows := make([]WeightRow, len(areas))
	for i := range rows {
		rows[i] = WeightRow{Index: i, Area: areas[i]}
		if i < len(arrival) {
			rows[i].ArrivalPDF = arrival[i].PDF
			rows[i].ArrivalCDF = arrival[i].CDF
		}
		if i < len(destination) {
			rows[i].DestinationPDF = destination[i].PDF
			rows[i].DestinationCDF = destination[i].CDF
		}
	}
	return rows
}

// LinkRow is one tube's endpoints, for links.csv.
type LinkRow struct {
	Index int     `csv:"link"`
	FromX float64 `csv:"from_x"`
	FromY float64 `csv:"from_y"`
	FromZ float64 `csv:"from_z"`
	ToX   float64 `csv:"to_x"`
	ToY   float64 `csv:"to_y"`
	ToZ   float64 `csv:"to_z"`
	Chord float64 `csv:"chord"` // Straight-line distance between the ends
}

// LinkRows flattens sampled pairs.
func LinkRows(pairs []sampler.LinkPair) []LinkRow {
	rows := make([]LinkRow, len(pairs))
	for i, p := range pairs {
		rows[i] = LinkRow{
			Index: i,
			FromX: p.From.X, FromY: p.From.Y, FromZ: p.From.Z,
			ToX: p.To.X, ToY: p.To.Y, ToZ: p.To.Z,
			Chord: r3.Norm(r3.Sub(p.To, p.From)),
		}
	}
	return rows
}
