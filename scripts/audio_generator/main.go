package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"lingo-client/internal/app"
	"lingo-client/internal/config"
	"lingo-client/internal/models"
)

// googleTTS synthesizes with a standard en-US voice, which stays inside the
// free tier.
type googleTTS struct {
	client *texttospeech.Client
}

func (g googleTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
			Name:         "en-US-Standard-F",
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("SynthesizeSpeech: %w", err)
	}
	return resp.AudioContent, nil
}

// wordsWithoutAudio walks every category through the vocabulary store.
func wordsWithoutAudio(ctx context.Context, a *app.App) []models.Word {
	v := a.Vocabulary
	v.LoadCategories(ctx)

	var words []models.Word
	for _, c := range v.Categories() {
		if out := v.LoadWords(ctx, c.ID); out.Degraded() {
			log.Printf("[tts] category %d (%s) unavailable, skipping", c.ID, c.Title)
			continue
		}
		words = append(words, v.WordsWithoutAudio()...)
	}
	return words
}

func main() {
	log.Println("[tts] starting audio generator")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[tts] config error: %v", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("[tts] startup error: %v", err)
	}
	defer a.Close()
	a.Session.Restore()

	// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
	ctx := context.Background()
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		log.Fatalf("[tts] failed to create TTS client: %v", err)
	}
	defer client.Close()

	g := &generator{
		synth:   googleTTS{client: client},
		outDir:  filepath.Join(cfg.Media.Dir, "words"),
		workers: cfg.Media.TTSWorkers,
		pause:   700 * time.Millisecond,
	}

	words := g.pending(wordsWithoutAudio(ctx, a))
	if len(words) == 0 {
		log.Println("[tts] every word already has audio")
		return
	}
	log.Printf("[tts] %d words to synthesize", len(words))

	written := g.run(ctx, words)
	log.Printf("[tts] done: %d of %d files written", written, len(words))
}
