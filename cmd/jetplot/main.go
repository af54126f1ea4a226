// Command jetplot loads a JetNet split, prints per-feature summary
// statistics and renders a histogram of the normalized particle pt column.
//
// Example:
//
//	jetplot -jet-type g -data-dir ./data -out g_pt.png
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/AnniLi1212/MPGAN-anni/fetch"
	"github.com/AnniLi1212/MPGAN-anni/jets"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	jetType       = flag.String("jet-type", "g", "jet type: g, t or q")
	dataDir       = flag.String("data-dir", ".", "directory holding (or receiving) the dataset files")
	download      = flag.Bool("download", false, "rebuild from csv even if the cache exists")
	numParticles  = flag.Int("num-particles", 0, "particles per jet (0 = all 30)")
	numPad        = flag.Int("num-pad", 0, "zero-padded particles out of num-particles")
	trainFraction = flag.Float64("train-fraction", 0.7, "fraction of jets in the train split")
	useTest       = flag.Bool("test", false, "use the test split instead of train")
	dropMask      = flag.Bool("drop-mask", false, "drop the mask feature")
	noise         = flag.Bool("noise", false, "noise-pad the zero-masked particles")
	seed          = flag.Int64("seed", 0, "noise RNG seed (0 = time based)")
	bins          = flag.Int("bins", 50, "histogram bin count")
	out           = flag.String("out", "pt_hist.png", "output PNG path")
	verbose       = flag.Bool("v", false, "verbose pipeline logging")
)

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("creating logger: %v", err)
		}
	}

	split := jets.SplitTrain
	if *useTest {
		split = jets.SplitTest
	}

	ds, err := jets.New(jets.Config{
		JetType:         *jetType,
		DataDir:         *dataDir,
		Fetcher:         &fetch.Client{Logger: logger},
		Download:        *download,
		NumParticles:    *numParticles,
		NumPadParticles: *numPad,
		DropMask:        *dropMask,
		Split:           split,
		TrainFraction:   *trainFraction,
		UseJetFeatures:  !*dropMask,
		NoisePadding:    *noise,
		Seed:            *seed,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("building dataset: %v", err)
	}

	fmt.Printf("%s jets, %s split: %d jets x %d particles x %d features, pt cutoff %.6g\n",
		*jetType, split, ds.Len(), ds.NumParticles(), ds.NumFeatures(), ds.PtCutoff())

	summaries, err := ds.Summarize()
	if err != nil {
		log.Fatalf("summarizing: %v", err)
	}
	names := []string{"eta", "phi", "pt", "mask"}
	fmt.Println("feature      min        max       mean     stddev")
	for _, s := range summaries {
		name := fmt.Sprintf("f%d", s.Feature)
		if s.Feature < len(names) {
			name = names[s.Feature]
		}
		fmt.Printf("%-7s %9.5f %10.5f %10.5f %10.5f\n", name, s.Min, s.Max, s.Mean, s.StdDev)
	}

	if err := plotPtHistogram(ds, *bins, *out); err != nil {
		log.Fatalf("plotting: %v", err)
	}
	fmt.Printf("wrote %s\n", *out)
}

// plotPtHistogram renders the normalized pt values of every particle in the
// split as a histogram PNG.
func plotPtHistogram(ds *jets.Dataset, bins int, path string) error {
	vals := make(plotter.Values, 0, ds.Len()*ds.NumParticles())
	for i := 0; i < ds.Len(); i++ {
		particles, _, err := ds.Get(i)
		if err != nil {
			return err
		}
		for p := 0; p < ds.NumParticles(); p++ {
			vals = append(vals, float64(particles[p*ds.NumFeatures()+jets.FeatPt]))
		}
	}

	p := plot.New()
	p.Title.Text = "normalized particle pt"
	p.X.Label.Text = "pt"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return err
	}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
