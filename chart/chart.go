// Package chart renders the normalized overheads as a grouped bar chart and
// exports it as static images.
package chart

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/accounting"
)

// Title is the title of the chart.
const Title = "Overheads normalized to parallel BGD"

// GroupLabels names the bar groups, one per dimension.
var GroupLabels = []string{"Runtime", "Memory", "Network BW"}

// Bars are drawn at 85% opacity.
const opacity uint8 = 0xd9

// Palette holds the bar colours, used in variant order and wrapped around.
var Palette = []color.Color{
	withOpacity(color.RGBA{R: 0x7e, G: 0x03, B: 0x08, A: 0xff}),
	withOpacity(color.RGBA{R: 0x39, G: 0x61, B: 0x90, A: 0xff}),
	withOpacity(color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}),
}

func withOpacity(c color.RGBA) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: opacity}
}

// A Series is the bar group of one variant, with its legend label.
type Series struct {
	Label string
	Bars  *plotter.BarChart
}

// NewSeries builds one bar series per row of the report, in row order. The
// series are centred around each dimension's tick.
func NewSeries(report *accounting.Report) ([]Series, error) {
	if len(report.Rows) == 0 {
		return nil, errors.New("report has no variants")
	}

	width := vg.Points(20)
	n := len(report.Rows)
	series := make([]Series, 0, n)

	for i, row := range report.Rows {
		values := make(plotter.Values, 0, len(hesmodel.Dimensions()))
		for _, d := range hesmodel.Dimensions() {
			values = append(values, row.Normalized.Get(d))
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, errors.Wrapf(err, "bars of %s", row.Variant.Name)
		}

		bars.LineStyle.Width = vg.Length(0)
		bars.Color = Palette[i%len(Palette)]
		bars.Offset = width * vg.Length(2*i-(n-1)) / 2

		series = append(series, Series{Label: row.Variant.DisplayName(), Bars: bars})
	}

	return series, nil
}

// New builds the chart of the report's normalized overheads.
func New(report *accounting.Report) (*plot.Plot, error) {
	series, err := NewSeries(report)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = Title
	p.Y.Min = 0
	p.Legend.Top = true

	for _, s := range series {
		p.Add(s.Bars)
		p.Legend.Add(s.Label, s.Bars)
	}

	p.NominalX(GroupLabels...)

	return p, nil
}

// An Exporter writes charts to a directory, one file per format.
type Exporter struct {
	Dir     string
	Formats []string
	DPI     int
	Width   vg.Length
	Height  vg.Length
}

// Export writes p as plot.<format> for every format, creating the directory
// if it does not exist. It returns the paths written.
func (e *Exporter) Export(p *plot.Plot) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", e.Dir)
	}

	paths := make([]string, 0, len(e.Formats))
	for _, format := range e.Formats {
		path := filepath.Join(e.Dir, "plot."+format)
		if err := e.write(p, format, path); err != nil {
			return paths, err
		}

		log.WithField("path", path).Info("chart exported")
		paths = append(paths, path)
	}

	return paths, nil
}

func (e *Exporter) newCanvas(format string) (vg.CanvasWriterTo, error) {
	switch format {
	case "eps":
		return vgeps.New(e.Width, e.Height), nil
	case "svg":
		return vgsvg.New(e.Width, e.Height), nil
	case "png":
		c := vgimg.NewWith(
			vgimg.UseWH(e.Width, e.Height),
			vgimg.UseDPI(e.DPI),
			vgimg.UseBackgroundColor(color.White),
		)
		return vgimg.PngCanvas{Canvas: c}, nil
	}

	return nil, errors.Errorf("unsupported format %q", format)
}

func (e *Exporter) write(p *plot.Plot, format, path string) error {
	c, err := e.newCanvas(format)
	if err != nil {
		return err
	}

	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}

	return f.Close()
}
