package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"mcbeam/util/conf"
)

const (
	CHART_WIDTH  = 6 * vg.Inch
	CHART_HEIGHT = 4 * vg.Inch
)

// ScoreChart plots the cumulative score of every final path against the
// generation at which each node was created.
func ScoreChart(c *conf.Chain, width, generations, maxPath int) (*plot.Plot, error) {
	chain, _, err := c.Build(nil)
	if err != nil {
		return nil, err
	}
	b, err := RunBeam(chain, width, generations, maxPath)
	if err != nil {
		return nil, err
	}
	paths, err := b.Paths()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("beam width %d", width)
	p.X.Label.Text = "generation"
	p.Y.Label.Text = "score"

	lines := make([]interface{}, 0, 2*len(paths))
	for _, path := range paths {
		pts := make(plotter.XYs, path.Len())
		offset := b.Generation() - (path.Len() - 1)
		for j, n := range path.Nodes {
			pts[j].X = float64(offset + j)
			pts[j].Y = n.Score
		}
		label := strings.Join(path.States(), "-")
		if path.Truncated {
			label = "..." + label
		}
		lines = append(lines, label, pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return nil, err
	}
	return p, nil
}

func WritePlot(p *plot.Plot, output io.Writer, format string) error {
	w, err := p.WriterTo(CHART_WIDTH, CHART_HEIGHT, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

func combineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

func SavePlot(p *plot.Plot, path string) (err error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("cannot infer image format from %q", path)
	}
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = combineErrors(err, output.Close())
	}()
	return WritePlot(p, output, format)
}

func Chart(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"o"}); err != nil {
		return err
	}
	BeamConfigOut()
	log.Printf("Output File:\t\t%s", outChart)
	c, err := ChainConf(chainFile, initial)
	if err != nil {
		return err
	}
	p, err := ScoreChart(c, BeamSize, Generations, MaxPath)
	if err != nil {
		return err
	}
	if err := SavePlot(p, outChart); err != nil {
		return err
	}
	log.Println("Wrote chart to", outChart)
	return nil
}

func ChartCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Chart,
		UsageLine: "chart [-c <chain file>] -o <image file> [options]",
		Short:     "plots path scores of the final beam",
		Long: `
runs beam search and plots the cumulative score of every final path by
generation; the image format follows the output file extension (png, svg, pdf)

	$ ./mcbeam chart -c <chain file> -b 3 -g 3 -o beam.png

`,
		Flag: *flag.NewFlagSet("chart", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&chainFile, "c", "", "Chain File (yaml)")
	cmd.Flag.StringVar(&initial, "i", "", "Initial state (overrides the chain file)")
	cmd.Flag.IntVar(&BeamSize, "b", 3, "Beam Size")
	cmd.Flag.IntVar(&Generations, "g", 3, "Number of generations")
	cmd.Flag.IntVar(&MaxPath, "maxpath", 0, "Max path length plotted (0 = default)")
	cmd.Flag.StringVar(&outChart, "o", "", "Output image file")
	return cmd
}
