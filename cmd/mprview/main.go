package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"mprview/internal/logging"
	"mprview/internal/models"
	"mprview/pkg/config"
	"mprview/pkg/dicomsource"
	"mprview/pkg/reconstruction"
	"mprview/pkg/viewer"
	"mprview/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing the DICOM series (searched recursively)")
	configPath := flag.String("config", "mprview.yaml", "YAML configuration file (defaults are used if missing)")
	planeName := flag.String("plane", "", "Plane to render: axial, sagittal or coronal (default from config)")
	index := flag.Int("index", -1, "Slice index along the plane's axis (-1 = centre slice)")
	wl := flag.Float64("wl", math.NaN(), "Window level (default: from the series)")
	ww := flag.Float64("ww", math.NaN(), "Window width (default: from the series)")
	autoWindow := flag.Bool("auto-window", false, "Use a 1st-99th percentile window instead of the series window")
	previewCols := flag.Int("preview", 64, "Width of the terminal preview in characters (0 disables it)")
	logFile := flag.String("logfile", "", "Write log messages to this file instead of stderr")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *logFile != "" {
		cfg.Logging.File = *logFile
	}
	if *verbose {
		cfg.Logging.Verbose = true
	}
	closeLog := logging.Setup(cfg.LoggingConfig())
	defer closeLog()

	plane := cfg.Plane()
	if *planeName != "" {
		if plane, err = models.ParsePlane(*planeName); err != nil {
			log.Fatalf("Invalid plane: %v", err)
		}
	}

	renderer := visualization.NewRenderer(visualization.WithDisplaySize(cfg.Display.Width, cfg.Display.Height))
	source := dicomsource.New(cfg.Source.Pattern, cfg.Source.Workers)
	session := viewer.NewSession(source, renderer, plane)

	startTime := time.Now()
	vol, err := session.Load(context.Background(), *inputDir)
	if err != nil {
		log.Fatalf("Loading series failed: %v", err)
	}
	logging.Infof("Series loaded in %.2f seconds", time.Since(startTime).Seconds())

	if *index >= 0 {
		if err := session.SetIndex(*index); err != nil {
			log.Fatalf("Invalid slice index: %v", err)
		}
	}

	_, win, _ := session.Selection()
	if *autoWindow {
		win = reconstruction.AutoWindow(vol, 0.01, 0.99)
	}
	if !math.IsNaN(*wl) {
		win.Center = *wl
	}
	if !math.IsNaN(*ww) {
		win.Width = *ww
	}
	if err := session.SetWindow(win); err != nil {
		log.Fatalf("Setting window failed: %v", err)
	}

	frame, err := session.Frame()
	if err != nil {
		log.Fatalf("Rendering failed: %v", err)
	}

	sel, win, _ := session.Selection()
	printSummary(vol.Summary(), vol, frame)
	fmt.Printf("Plane: %v, slice %d of %d\n", sel.Plane, sel.Index, visualization.Extent(vol, sel.Plane)-1)
	fmt.Printf("Window: WL %.1f / WW %.1f\n", win.Center, win.Width)

	if *previewCols > 0 {
		fmt.Println()
		fmt.Print(preview(frame, *previewCols))
	}
}

// printSummary prints the series information block
func printSummary(m models.MetadataSummary, vol *models.Volume, frame models.RenderedFrame) {
	fmt.Println("--- Series information ---")
	fmt.Printf("Image size: %d x %d\n", m.Rows, m.Cols)
	fmt.Printf("Slice thickness: %g mm\n", m.SliceThicknessMm)
	fmt.Printf("Slices: %d\n", m.SliceCount)
	fmt.Printf("Intensity range: %d .. %d\n", m.IntensityMin, m.IntensityMax)
	fmt.Printf("(DICOM files found: %d)\n", m.FileCount)
	fmt.Printf("Volume in memory: %s\n", humanize.Bytes(uint64(vol.SizeBytes())))
	fmt.Printf("Display size: %d x %d\n", frame.Width, frame.Height)
}
