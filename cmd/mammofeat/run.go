package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"mammofeat/pkg/affinity"
	"mammofeat/pkg/features"
	"mammofeat/pkg/filters"
	"mammofeat/pkg/imgio"
	"mammofeat/pkg/mias"
)

// filterFunc turns a loaded image into a feature image.
type filterFunc func(ctx context.Context, img *affinity.Image, p *affinity.Params) (*affinity.Image, error)

var filterFuncs = map[string]filterFunc{
	"affinity":   affinity.Compute,
	"maxdiff":    filters.MaxDiff,
	"centerdiff": filters.CenterDiff,
	"average":    averageFilter,
	"div16":      div16Filter,
}

func filterList() string {
	names := make([]string, 0, len(filterFuncs))
	for name := range filterFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// averageFilter blends the affinity image with the matching source pixels.
func averageFilter(ctx context.Context, img *affinity.Image, p *affinity.Params) (*affinity.Image, error) {
	feature, err := affinity.Compute(ctx, img, p)
	if err != nil {
		return nil, err
	}
	return filters.Average(img, feature)
}

func div16Filter(_ context.Context, img *affinity.Image, _ *affinity.Params) (*affinity.Image, error) {
	out := img.Clone()
	filters.Div16(out)
	return out, nil
}

// job is the resolved configuration shared by every file of a run.
type job struct {
	opts    *options
	filter  filterFunc
	params  *affinity.Params
	mode    imgio.ColorMode
	answers mias.Answers
}

func newJob(o *options) (*job, error) {
	j := &job{opts: o, params: affinity.NewParams()}

	var ok bool
	if j.filter, ok = filterFuncs[o.filter]; !ok {
		return nil, fmt.Errorf("unknown filter %q (want one of %s)", o.filter, filterList())
	}
	var err error
	if j.params.Metric, err = affinity.ParseMetric(o.metric); err != nil {
		return nil, err
	}
	if j.params.Edge, err = affinity.ParseEdgePolicy(o.edge); err != nil {
		return nil, err
	}
	j.params.Workers = o.workers
	if err := j.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if j.mode, err = imgio.ParseColorMode(o.color); err != nil {
		return nil, err
	}
	if o.answersPath != "" {
		if j.answers, err = mias.LoadAnswers(o.answersPath); err != nil {
			return nil, err
		}
	}
	if o.jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", o.jobs)
	}
	return j, nil
}

func run(ctx context.Context, o *options, args []string) error {
	j, err := newJob(o)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if j.answers == nil {
			return fmt.Errorf("usage: mammofeat [flags] <file-or-dir>...")
		}
		return j.sortExisting()
	}

	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no supported images found (formats: %s)", strings.Join(imgio.SupportedFormats(), " "))
	}
	glog.Infof("processing %d images: filter=%s params=%s color=%s jobs=%d",
		len(inputs), o.filter, j.params, j.mode, o.jobs)

	startTime := time.Now()
	results := make([]*result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.jobs)
	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			r, err := j.process(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	glog.Infof("processed %d images in %.1fs", len(inputs), time.Since(startTime).Seconds())

	for _, r := range results {
		r.print()
	}
	return nil
}

// sortExisting files previously written outputs by diagnosis.
func (j *job) sortExisting() error {
	for _, dir := range []string{j.opts.outDir, j.opts.saturatedDir, j.opts.overlayDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		missing, err := j.answers.SortDir(dir)
		if err != nil {
			return err
		}
		sort.Strings(missing)
		for _, id := range missing {
			glog.Warningf("%s: no file for %s", dir, id)
		}
		glog.Infof("sorted %s (%d references without a file)", dir, len(missing))
	}
	return nil
}

// collectInputs expands directories (one level) into the supported image
// files they contain. Explicit file arguments are passed through unchecked.
func collectInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", arg, err)
		}
		for _, e := range entries {
			if !e.IsDir() && imgio.IsSupportedFormat(e.Name()) {
				inputs = append(inputs, filepath.Join(arg, e.Name()))
			}
		}
	}
	return inputs, nil
}

// result is what gets reported for one processed image.
type result struct {
	input   string
	outputs []string
	width   int
	height  int
	elapsed time.Duration
	stats   []features.ChannelStats
	zones   *features.ZoneAnalysis
}

func (j *job) process(ctx context.Context, path string) (*result, error) {
	startTime := time.Now()
	img, err := imgio.Load(path, j.mode)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("loaded %s: %s", path, img)

	feature, err := j.filter(ctx, img, j.params)
	if err != nil {
		return nil, err
	}

	r := &result{
		input:  path,
		width:  feature.Width,
		height: feature.Height,
		stats:  features.Describe(feature),
	}
	name := imgio.OutputName(path)

	out, err := j.save(j.opts.outDir, path, name, feature)
	if err != nil {
		return nil, err
	}
	r.outputs = append(r.outputs, out)

	if j.opts.saturatedDir != "" {
		saturated := feature.Clone()
		affinity.Saturate(saturated)
		out, err := j.save(j.opts.saturatedDir, path, name, saturated)
		if err != nil {
			return nil, err
		}
		r.outputs = append(r.outputs, out)
	}

	r.zones = features.AnalyzeZones(feature, 0)
	if j.opts.overlayDir != "" && r.zones != nil {
		dir, err := j.outputDir(j.opts.overlayDir, path)
		if err != nil {
			return nil, err
		}
		out := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+"_zones.jpg")
		if err := features.RenderZoneOverlay(feature, 0, r.zones, out); err != nil {
			return nil, fmt.Errorf("rendering overlay: %w", err)
		}
		r.outputs = append(r.outputs, out)
	}

	r.elapsed = time.Since(startTime)
	glog.Infof("%s done in %.2fs", path, r.elapsed.Seconds())
	return r, nil
}

func (j *job) outputDir(root, input string) (string, error) {
	dir := root
	if j.answers != nil {
		dir = j.answers.Dir(root, input)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return dir, nil
}

func (j *job) save(root, input, name string, img *affinity.Image) (string, error) {
	dir, err := j.outputDir(root, input)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, name)
	if err := imgio.Save(out, img); err != nil {
		return "", err
	}
	return out, nil
}

func (r *result) print() {
	fmt.Println()
	fmt.Printf("=== %s (%.2fs) ===\n", filepath.Base(r.input), r.elapsed.Seconds())
	fmt.Printf("  Output size:     %d x %d\n", r.width, r.height)
	for c, s := range r.stats {
		fmt.Printf("  Channel %d:       min=%d max=%d mean=%.2f sd=%.2f\n", c, s.Min, s.Max, s.Mean, s.StdDev)
		fmt.Printf("                   median=%.1f +/- %.2f  non-zero=%.1f%%\n", s.Median, s.MAD, s.NonZero*100)
	}
	if r.zones != nil {
		fmt.Println("  Zones (channel 0):")
		for i, pos := range features.ZoneOrder {
			z := r.zones.Zones[pos]
			fmt.Printf("    %-8s mean=%6.2f  median=%5.1f  n=%d\n", z.Label, z.Mean, z.Median, z.PixelCount)
			if (i+1)%3 == 0 && i < 8 {
				fmt.Println("    ---")
			}
		}
		fmt.Printf("    Spread: %.1f%% (hottest: %s, coldest: %s)\n", r.zones.Spread, r.zones.Hottest, r.zones.Coldest)
		if !r.zones.Reliable {
			fmt.Println("    [SMALL ZONES - UNRELIABLE]")
		}
	}
	for _, out := range r.outputs {
		fmt.Printf("  Wrote:           %s\n", out)
	}
	fmt.Println("==============================")
}
