package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lingo-client/internal/app"
	"lingo-client/internal/config"
	"lingo-client/internal/models"
	"lingo-client/internal/storage"
)

func main() {
	log.Println("[loader] starting")
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[loader] config error: %v", err)
	}
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "scripts"
	}
	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("[loader] ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	// The loader keeps nothing between runs.
	a, err := app.New(cfg, app.WithStorage(storage.NewMemory()))
	if err != nil {
		log.Fatalf("[loader] startup error: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.Session.SignIn(ctx, a.Gateway.Auth(), models.SignInRequest{Email: email, Password: password}); err != nil {
		log.Fatalf("[loader] sign-in failed: %v", err)
	}

	lessons, words, err := findFiles(dir)
	if err != nil {
		log.Fatalf("[loader] failed to list %s: %v", dir, err)
	}
	log.Printf("[loader] found %d lesson files and %d word files", len(lessons), len(words))

	added, err := loadLessons(ctx, a, lessons)
	if err != nil {
		log.Fatalf("[loader] lessons: %v", err)
	}
	wordCount, err := loadWords(ctx, a, words)
	if err != nil {
		log.Fatalf("[loader] words: %v", err)
	}

	log.Printf("[loader] done in %v: %d lessons, %d words", time.Since(startTime), added, wordCount)
}

// levelIDs returns the id of every level name, adding the missing levels.
func levelIDs(ctx context.Context, a *app.App, names []string) (map[string]int, error) {
	levels := a.Gateway.Levels()
	list, err := levels.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(list))
	for _, l := range list {
		ids[strings.ToUpper(l.Level)] = l.ID
	}

	var missing bool
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		if _, err := levels.Add(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to add level %s: %w", name, err)
		}
		log.Printf("[loader] added level %s", name)
		missing = true
	}
	if !missing {
		return ids, nil
	}

	if list, err = levels.List(ctx); err != nil {
		return nil, err
	}
	for _, l := range list {
		ids[strings.ToUpper(l.Level)] = l.ID
	}
	return ids, nil
}

func loadLessons(ctx context.Context, a *app.App, files []lessonFile) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	var names []string
	seen := map[string]bool{}
	for _, lf := range files {
		if !seen[lf.LevelName] {
			seen[lf.LevelName] = true
			names = append(names, lf.LevelName)
		}
	}
	ids, err := levelIDs(ctx, a, names)
	if err != nil {
		return 0, err
	}

	var lessons []models.Lesson
	for _, lf := range files {
		rows, err := readRows(lf.Path)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", lf.Path, err)
		}
		lesson, ok := parseLesson(lf, ids[lf.LevelName], rows)
		if !ok {
			log.Printf("[loader] %s has no rules, skipping", filepath.Base(lf.Path))
			continue
		}
		lessons = append(lessons, lesson)
	}
	if len(lessons) == 0 {
		return 0, nil
	}
	if _, err := a.Grammar.AddLessons(ctx, lessons); err != nil {
		return 0, err
	}
	return len(lessons), nil
}

// categoryIDs maps each title to its category id, creating the missing ones.
// Without the real category list nothing is created, since every title would
// look missing and be added again.
func categoryIDs(ctx context.Context, a *app.App, titles []string) (map[string]int, error) {
	v := a.Vocabulary
	if v.LoadCategories(ctx).Degraded() {
		return nil, fmt.Errorf("categories unavailable: %s", v.Err())
	}
	ids := map[string]int{}
	for _, c := range v.Categories() {
		ids[strings.ToLower(c.Title)] = c.ID
	}

	var missing []string
	for _, t := range titles {
		if _, ok := ids[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		if _, err := v.AddCategories(ctx, missing); err != nil {
			return nil, err
		}
		for _, c := range v.Categories() {
			ids[strings.ToLower(c.Title)] = c.ID
		}
	}
	return ids, nil
}

func loadWords(ctx context.Context, a *app.App, files []wordsFile) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	titles := make([]string, 0, len(files))
	for _, wf := range files {
		titles = append(titles, wf.Category)
	}
	ids, err := categoryIDs(ctx, a, titles)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, wf := range files {
		id, ok := ids[wf.Category]
		if !ok {
			return total, fmt.Errorf("category %q was not created", wf.Category)
		}
		rows, err := readRows(wf.Path)
		if err != nil {
			return total, fmt.Errorf("failed to read %s: %w", wf.Path, err)
		}
		words := parseWords(wf, rows)
		if len(words) == 0 {
			continue
		}
		if _, err := a.Vocabulary.AddWords(ctx, id, words); err != nil {
			return total, err
		}
		log.Printf("[loader] %s: %d words", wf.Category, len(words))
		total += len(words)
	}
	return total, nil
}
