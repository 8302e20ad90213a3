// Command genfilter builds a background calibration file from a radar frame
// captured in clear weather. Every pixel of the analysis region is recorded,
// so overlays such as range rings and coastlines are excluded from later scans.
//
// Usage:
//
//	go run ./cmd/genfilter -frame clear_sky.gif -out filter/filter.txt
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/radar-rainfall/internal/adapter/radar"
	"github.com/couchcryptid/radar-rainfall/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	framePath := flag.String("frame", "", "clear-sky radar frame (GIF or PNG)")
	outPath := flag.String("out", "filter/filter.txt", "output calibration file")
	flag.Parse()

	if *framePath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -frame")
	}

	frame, err := radar.DecodeFile(*framePath)
	if err != nil {
		return err
	}

	region, err := domain.CropAnalysisRegion(frame, domain.ChennaiSite().AnalysisBox)
	if err != nil {
		return err
	}
	model := domain.BackgroundFromImage(region)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create calibration file: %w", err)
	}

	if _, err := model.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write calibration: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close calibration file: %w", err)
	}

	log.Printf("wrote %d records to %s", model.Len(), *outPath)
	return nil
}
