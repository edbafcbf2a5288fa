// Command mammofeat computes per-pixel neighbourhood features for a set of
// images (typically the MIAS mammograms) and writes the feature images next to
// a contrast-stretched copy for inspection.
//
// Usage:
//
//	mammofeat [flags] <file-or-dir>...
//	mammofeat -answers Info.txt -out output
//
// The second form files existing outputs into Normal/ and Abnormal/.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/golang/glog"
)

type options struct {
	outDir       string
	saturatedDir string
	overlayDir   string
	answersPath  string
	filter       string
	metric       string
	edge         string
	color        string
	workers      int
	jobs         int
}

func main() {
	var o options
	flag.StringVar(&o.outDir, "out", "output", "directory for raw feature images")
	flag.StringVar(&o.saturatedDir, "saturated", "output/saturated", "directory for contrast-stretched feature images (empty to skip)")
	flag.StringVar(&o.overlayDir, "overlay", "", "directory for zone overlay JPEGs (empty to skip)")
	flag.StringVar(&o.answersPath, "answers", "", "MIAS ground truth file; outputs are split into Normal/ and Abnormal/")
	flag.StringVar(&o.filter, "filter", "affinity", "feature filter: "+filterList())
	flag.StringVar(&o.metric, "metric", "min", "affinity metric: min, max or raw")
	flag.StringVar(&o.edge, "edge", "crop", "border handling: crop or shrink")
	flag.StringVar(&o.color, "color", "gray", "input channels: gray or rgb")
	flag.IntVar(&o.workers, "workers", 0, "goroutines per image (0 = GOMAXPROCS)")
	flag.IntVar(&o.jobs, "jobs", max(1, runtime.NumCPU()/4), "images processed concurrently")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: mammofeat [flags] <file-or-dir>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if err := run(context.Background(), &o, flag.Args()); err != nil {
		glog.Flush()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
