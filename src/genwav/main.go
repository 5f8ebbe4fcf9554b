package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/jinjor/snes-sfx/src/audio"
	"golang.org/x/sync/errgroup"
)

func main() {
	sampleRate := flag.Int("rate", 44100, "sample rate of the files")
	category := flag.String("category", "", "render only this category")
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		panic("dir is not passed")
	}
	log.SetFlags(log.Lshortfile)

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	presets := audio.Presets()
	if *category != "" {
		presets = audio.PresetsByCategory(*category)
	}

	ctx := context.Background()
	g, ctx := errgroup.WithContext(ctx)
	for _, preset := range presets {
		preset := preset
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			err := renderFile(filepath.Join(dir, preset.Key+".wav"), preset.Params, *sampleRate)
			if err != nil {
				return err
			}
			log.Printf("saved %s (%s)\n", preset.Key, preset.Name)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Printf("Successfully rendered %d presets.\n", len(presets))
}

func renderFile(path string, p audio.Params, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("error while closing %s: %v", path, err)
		}
	}()
	return audio.RenderWAV(f, p, sampleRate)
}
