// Command irisfinder locates the pupil and limbus in eye images.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gwquinn/IrisFinder/internal/config"
	"github.com/gwquinn/IrisFinder/internal/debug"
	"github.com/gwquinn/IrisFinder/internal/location"
	"github.com/gwquinn/IrisFinder/internal/overlay"
	"github.com/gwquinn/IrisFinder/internal/source"
)

type result struct {
	pupil, limbus location.Boundary
	err           error
}

func main() {
	configPath := flag.String("config", "irisfinder.yaml", "YAML settings file, defaults are used if it doesn't exist")
	traceDir := flag.String("trace", "", "Directory to write intermediate images to")
	overlayDir := flag.String("overlay", "", "Directory to write images with the boundaries drawn on to")
	show := flag.Bool("show", false, "Show intermediate images and overlays in windows, one image at a time")
	workers := flag.Int("workers", 0, "Number of images to process concurrently (default: from config)")
	saveConfig := flag.String("save-config", "", "Write the effective settings to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && *saveConfig == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *traceDir != "" {
		cfg.Output.TraceDir = *traceDir
	}
	if *overlayDir != "" {
		cfg.Output.OverlayDir = *overlayDir
	}
	if *show {
		cfg.Output.Show = true
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}
	if *saveConfig != "" {
		if err := config.Save(cfg, *saveConfig); err != nil {
			log.Fatal(err)
		}
	}
	for _, dir := range []string{cfg.Output.TraceDir, cfg.Output.OverlayDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	paths := flag.Args()
	results := make([]result, len(paths))

	if cfg.Output.Show {
		// HighGUI windows belong to the main thread.
		for i, path := range paths {
			results[i] = process(cfg, path)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < cfg.Processing.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = process(cfg, paths[i])
				}
			}()
		}
		for i := range paths {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	failed := false
	for i, r := range results {
		if r.err != nil {
			log.Printf("%s: %v", paths[i], r.err)
			failed = true
			continue
		}
		fmt.Printf("%s %s %s\n", paths[i], describe(r.pupil), describe(r.limbus))
	}
	if failed {
		os.Exit(1)
	}
}

// process localizes the boundaries in the image at path and writes
// whatever debug output cfg asks for.
func process(cfg *config.Config, path string) result {
	im, err := source.Read(path)
	if err != nil {
		return result{err: err}
	}
	defer im.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var sinks []debug.Sink
	if cfg.Output.TraceDir != "" {
		sinks = append(sinks, debug.DirSink{Dir: cfg.Output.TraceDir, Prefix: base + "_"})
	}
	var window *debug.WindowSink
	if cfg.Output.Show {
		window = &debug.WindowSink{}
		defer window.Close()
		sinks = append(sinks, window)
	}

	f, err := location.NewFinder(im, cfg.Location, location.WithTrace(debug.Multi(sinks...)))
	if err != nil {
		return result{err: err}
	}
	pupil, limbus, err := f.Boundaries()
	if err != nil {
		return result{err: err}
	}
	if window != nil {
		window.Show()
	}

	if cfg.Output.OverlayDir != "" || window != nil {
		drawn, err := overlay.Draw(im, cfg.Style(), pupil, limbus)
		if err != nil {
			log.Printf("%s: drawing overlay: %v", path, err)
		} else {
			defer drawn.Close()
			if cfg.Output.OverlayDir != "" {
				out := filepath.Join(cfg.Output.OverlayDir, base+".png")
				if err := overlay.Save(out, drawn); err != nil {
					log.Printf("%s: %v", path, err)
				}
			}
			if window != nil {
				debug.ShowMats(im, drawn)
			}
		}
	}

	return result{pupil: pupil, limbus: limbus}
}

func describe(b location.Boundary) string {
	if !b.Found() {
		return b.Type.String() + ": not found"
	}
	return b.String()
}
