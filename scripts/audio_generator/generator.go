package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lingo-client/internal/models"
)

// Synthesizer turns text into MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type generator struct {
	synth   Synthesizer
	outDir  string
	workers int
	// pause between requests of one worker, to stay under the API quota
	pause time.Duration
}

func (g *generator) audioPath(id int) string {
	return filepath.Join(g.outDir, fmt.Sprintf("%d.mp3", id))
}

// pending drops words whose file already exists.
func (g *generator) pending(words []models.Word) []models.Word {
	var out []models.Word
	for _, w := range words {
		if _, err := os.Stat(g.audioPath(w.ID)); errors.Is(err, fs.ErrNotExist) {
			out = append(out, w)
		}
	}
	return out
}

// run synthesizes every word on a fixed pool of workers and returns the
// number of files written.
func (g *generator) run(ctx context.Context, words []models.Word) int {
	if err := os.MkdirAll(g.outDir, os.ModePerm); err != nil {
		log.Printf("[tts] failed to create %s: %v", g.outDir, err)
		return 0
	}

	jobs := make(chan models.Word, len(words))
	results := make(chan string, len(words))
	var wg sync.WaitGroup

	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go g.worker(ctx, &wg, jobs, results)
	}
	for _, w := range words {
		jobs <- w
	}
	close(jobs)

	wg.Wait()
	close(results)

	written := 0
	for msg := range results {
		log.Println(msg)
		written++
	}
	return written
}

func (g *generator) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan models.Word, results chan<- string) {
	defer wg.Done()

	for w := range jobs {
		if ctx.Err() != nil {
			return
		}
		path := g.audioPath(w.ID)
		audio, err := g.synth.Synthesize(ctx, w.Word)
		if err != nil {
			log.Printf("[tts] word %d: synthesis failed: %v", w.ID, err)
			continue
		}
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			log.Printf("[tts] word %d: write failed: %v", w.ID, err)
			continue
		}
		results <- fmt.Sprintf("[tts] word %d (%s) -> %s", w.ID, w.Word, path)

		if g.pause > 0 {
			time.Sleep(g.pause)
		}
	}
}
