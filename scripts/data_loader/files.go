package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lingo-client/internal/models"
)

var (
	lessonFileRe = regexp.MustCompile(`^(A0|A1|A2|B1|B2|C1)_lesson_([0-9]+)\.csv$`)
	wordsFileRe  = regexp.MustCompile(`^words_([a-z0-9_-]+)\.csv$`)
)

type lessonFile struct {
	Path      string
	LevelName string
	LessonNum int
}

type wordsFile struct {
	Path     string
	Category string
}

// findFiles collects lesson and word files from dir. Lessons are sorted by
// level name, then by lesson number; word files by category.
func findFiles(dir string) ([]lessonFile, []wordsFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var lessons []lessonFile
	var words []wordsFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if m := lessonFileRe.FindStringSubmatch(name); len(m) == 3 {
			n, _ := strconv.Atoi(m[2])
			lessons = append(lessons, lessonFile{Path: filepath.Join(dir, name), LevelName: m[1], LessonNum: n})
			continue
		}
		if m := wordsFileRe.FindStringSubmatch(name); len(m) == 2 {
			title := strings.ReplaceAll(m[1], "_", " ")
			words = append(words, wordsFile{Path: filepath.Join(dir, name), Category: title})
		}
	}

	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].LevelName != lessons[j].LevelName {
			return lessons[i].LevelName < lessons[j].LevelName
		}
		return lessons[i].LessonNum < lessons[j].LessonNum
	})
	sort.Slice(words, func(i, j int) bool { return words[i].Category < words[j].Category })
	return lessons, words, nil
}

// readRows returns the records of a CSV file without its header row.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func column(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

// parseLesson builds a lesson from rows of rule,example,assignment. Rules
// and examples are joined line by line; the first non-empty assignment wins.
func parseLesson(lf lessonFile, levelID int, rows [][]string) (models.Lesson, bool) {
	var rules, examples []string
	lesson := models.Lesson{
		Title:  fmt.Sprintf("%s Lesson %d", lf.LevelName, lf.LessonNum),
		Levels: &models.Level{ID: levelID, Level: lf.LevelName},
	}
	for _, r := range rows {
		if len(r) < 2 {
			log.Printf("[loader] skipping short row in %s: %v", filepath.Base(lf.Path), r)
			continue
		}
		if rule := column(r, 0); rule != "" {
			rules = append(rules, rule)
		}
		if ex := column(r, 1); ex != "" {
			examples = append(examples, ex)
		}
		if lesson.Assignment == "" {
			lesson.Assignment = column(r, 2)
		}
	}
	if len(rules) == 0 {
		return models.Lesson{}, false
	}
	lesson.Description = rules[0]
	lesson.Rules = strings.Join(rules, "\n")
	lesson.Example = strings.Join(examples, "\n")
	return lesson, true
}

// parseWords reads rows of word,translation,definition,example,levels.
func parseWords(wf wordsFile, rows [][]string) []models.Word {
	words := make([]models.Word, 0, len(rows))
	for _, r := range rows {
		w := models.Word{
			Group:       wf.Category,
			Word:        column(r, 0),
			Translation: column(r, 1),
			Definition:  column(r, 2),
			Example:     column(r, 3),
			Levels:      column(r, 4),
		}
		if w.Word == "" || w.Translation == "" {
			log.Printf("[loader] skipping incomplete word in %s: %v", filepath.Base(wf.Path), r)
			continue
		}
		words = append(words, w)
	}
	return words
}
