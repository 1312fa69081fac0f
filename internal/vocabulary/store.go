// Package vocabulary keeps word categories and the words of the open
// category.
package vocabulary

import (
	"context"
	"slices"
	"sync"

	"lingo-client/internal/models"
	"lingo-client/internal/resilience"
)

const (
	msgCategories    = "Failed to load categories"
	msgWords         = "Failed to load words"
	msgAddCategories = "Failed to add categories"
	msgAddWords      = "Failed to add words"
)

// Source is the vocabulary endpoint group.
type Source interface {
	Categories(ctx context.Context) ([]models.VocabularyCategory, error)
	Words(ctx context.Context, categoryID int) ([]models.Word, error)
	AddCategories(ctx context.Context, titles []string) (*models.Response, error)
	AddWords(ctx context.Context, categoryID int, words []models.Word) (*models.Response, error)
}

type Store struct {
	primary Source
	public  Source

	mu           sync.RWMutex
	categories   []models.VocabularyCategory
	words        []models.Word
	selected     int
	hasSelection bool
	inflight     int
	err          string
}

func New(primary, public Source) *Store {
	return &Store{primary: primary, public: public}
}

func (s *Store) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

func (s *Store) setErr(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *Store) LoadCategories(ctx context.Context) resilience.Outcome {
	defer s.begin()()
	return s.loadCategories(ctx)
}

func (s *Store) loadCategories(ctx context.Context) resilience.Outcome {
	categories, out, _ := resilience.Policy[[]models.VocabularyCategory]{
		Name:     "vocabulary categories",
		Primary:  s.primary.Categories,
		Public:   s.public.Categories,
		Fallback: func() []models.VocabularyCategory { return []models.VocabularyCategory{} },
	}.Do(ctx)

	s.mu.Lock()
	s.categories = categories
	if out.Degraded() {
		s.err = msgCategories
	}
	s.mu.Unlock()
	return out
}

// LoadWords loads the words of categoryID and makes it the open category.
// When only static defaults were available nothing is open afterwards, so
// Selected and Words never disagree.
func (s *Store) LoadWords(ctx context.Context, categoryID int) resilience.Outcome {
	defer s.begin()()
	return s.loadWords(ctx, categoryID)
}

func (s *Store) loadWords(ctx context.Context, categoryID int) resilience.Outcome {
	words, out, _ := resilience.Policy[[]models.Word]{
		Name: "vocabulary words",
		Primary: func(ctx context.Context) ([]models.Word, error) {
			return s.primary.Words(ctx, categoryID)
		},
		Public: func(ctx context.Context) ([]models.Word, error) {
			return s.public.Words(ctx, categoryID)
		},
		Fallback: func() []models.Word { return []models.Word{} },
	}.Do(ctx)

	s.mu.Lock()
	s.words = words
	if out.Degraded() {
		s.err = msgWords
		s.selected, s.hasSelection = 0, false
	} else {
		s.selected, s.hasSelection = categoryID, true
	}
	s.mu.Unlock()
	return out
}

// AddCategories creates categories and reloads the list.
func (s *Store) AddCategories(ctx context.Context, titles []string) (*models.Response, error) {
	defer s.begin()()

	resp, _, err := resilience.Policy[*models.Response]{
		Name: "add categories",
		Primary: func(ctx context.Context) (*models.Response, error) {
			return s.primary.AddCategories(ctx, titles)
		},
	}.Do(ctx)
	if err != nil {
		s.setErr(msgAddCategories)
		return nil, err
	}
	s.loadCategories(ctx)
	return resp, nil
}

// AddWords uploads words into categoryID, reloading the word list when that
// category is open.
func (s *Store) AddWords(ctx context.Context, categoryID int, words []models.Word) (*models.Response, error) {
	defer s.begin()()

	resp, _, err := resilience.Policy[*models.Response]{
		Name: "add words",
		Primary: func(ctx context.Context) (*models.Response, error) {
			return s.primary.AddWords(ctx, categoryID, words)
		},
	}.Do(ctx)
	if err != nil {
		s.setErr(msgAddWords)
		return nil, err
	}
	if selected, ok := s.Selected(); ok && selected == categoryID {
		s.loadWords(ctx, categoryID)
	}
	return resp, nil
}

func (s *Store) Categories() []models.VocabularyCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) Words() []models.Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.words)
}

func (s *Store) HasSelection() bool {
	_, ok := s.Selected()
	return ok
}

// Selected returns the open category.
func (s *Store) Selected() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasSelection
}

// WordsWithoutAudio returns the loaded words that have no pronunciation file.
func (s *Store) WordsWithoutAudio() []models.Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Word
	for _, w := range s.words {
		if w.AudioURL == "" {
			out = append(out, w)
		}
	}
	return out
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
