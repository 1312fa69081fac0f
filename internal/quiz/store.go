// Package quiz runs a quiz session: the loaded question lists, the quiz in
// progress with one optional answer per question, and the submitted result.
package quiz

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"lingo-client/internal/models"
	"lingo-client/internal/resilience"
)

// ErrUnanswered is returned by Submit while any question has no answer.
var ErrUnanswered = errors.New("please answer all questions before submitting")

// defaultQuizID is submitted when the loaded questions carry no quiz id.
const defaultQuizID = 1

const (
	msgGrammarQuizzes    = "Failed to load grammar quizzes"
	msgVocabularyQuizzes = "Failed to load vocabulary quizzes"
	msgSubmit            = "Failed to submit quiz"
	msgResult            = "Failed to get quiz result"
)

type Kind string

const (
	KindGrammar    Kind = "grammar"
	KindVocabulary Kind = "vocabulary"
)

// Source is the quiz endpoint group.
type Source interface {
	GrammarQuizzes(ctx context.Context, topicID int) ([]models.Question, error)
	VocabularyQuizzes(ctx context.Context, categoryID int) ([]models.Question, error)
	SubmitGrammar(ctx context.Context, req models.AnswerQuizRequest) (*models.QuizResult, error)
	SubmitVocabulary(ctx context.Context, req models.AnswerQuizRequest) (*models.QuizResult, error)
	GrammarResult(ctx context.Context, topicID int) (*models.QuizResult, error)
}

type Session interface {
	IsAuthenticated() bool
	UserID() int
}

type Store struct {
	primary     Source
	public      Source
	session     Session
	guestUserID int

	mu         sync.RWMutex
	rng        *rand.Rand
	grammar    []models.Question
	vocabulary []models.Question
	current    []models.Question
	kind       Kind
	index      int
	answers    []*string
	result     *models.QuizResult
	inflight   int
	err        string
}

type Option func(*Store)

// WithSeed makes answer shuffling reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Store) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithGuestUserID sets the user id submitted for anonymous visitors.
func WithGuestUserID(id int) Option {
	return func(s *Store) { s.guestUserID = id }
}

func New(primary, public Source, session Session, opts ...Option) *Store {
	seed := uint64(time.Now().UnixNano())
	s := &Store{
		primary: primary,
		public:  public,
		session: session,
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
		kind:    KindGrammar,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

// LoadGrammarQuizzes loads the questions of a grammar topic; 0 loads all.
func (s *Store) LoadGrammarQuizzes(ctx context.Context, topicID int) ([]models.Question, resilience.Outcome) {
	defer s.begin()()

	questions, out, _ := resilience.Policy[[]models.Question]{
		Name: "grammar quizzes",
		Primary: func(ctx context.Context) ([]models.Question, error) {
			return s.primary.GrammarQuizzes(ctx, topicID)
		},
		Public: func(ctx context.Context) ([]models.Question, error) {
			return s.public.GrammarQuizzes(ctx, topicID)
		},
		Fallback: func() []models.Question { return []models.Question{} },
	}.Do(ctx)

	s.mu.Lock()
	s.grammar = questions
	if out.Degraded() {
		s.err = msgGrammarQuizzes
	}
	s.mu.Unlock()
	return slices.Clone(questions), out
}

func (s *Store) LoadVocabularyQuizzes(ctx context.Context, categoryID int) ([]models.Question, resilience.Outcome) {
	defer s.begin()()

	questions, out, _ := resilience.Policy[[]models.Question]{
		Name: "vocabulary quizzes",
		Primary: func(ctx context.Context) ([]models.Question, error) {
			return s.primary.VocabularyQuizzes(ctx, categoryID)
		},
		Public: func(ctx context.Context) ([]models.Question, error) {
			return s.public.VocabularyQuizzes(ctx, categoryID)
		},
		Fallback: func() []models.Question { return []models.Question{} },
	}.Do(ctx)

	s.mu.Lock()
	s.vocabulary = questions
	if out.Degraded() {
		s.err = msgVocabularyQuizzes
	}
	s.mu.Unlock()
	return slices.Clone(questions), out
}

// Start begins a quiz over questions with every answer unset.
func (s *Store) Start(questions []models.Question, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = slices.Clone(questions)
	s.kind = kind
	s.index = 0
	s.answers = make([]*string, len(questions))
	s.result = nil
	s.err = ""
}

// SelectAnswer records answer for the current question.
func (s *Store) SelectAnswer(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < len(s.answers) {
		s.answers[s.index] = &answer
	}
}

func (s *Store) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < len(s.current)-1 {
		s.index++
	}
}

func (s *Store) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index > 0 {
		s.index--
	}
}

// Submit sends the answers. Nothing is sent unless every question has an
// answer.
func (s *Store) Submit(ctx context.Context) (*models.QuizResult, error) {
	s.mu.RLock()
	ready := canSubmit(s.current, s.answers)
	kind := s.kind
	var req models.AnswerQuizRequest
	if ready {
		req.QuizID = s.current[0].QuizID
		if req.QuizID == 0 {
			req.QuizID = defaultQuizID
		}
		req.SelectedAnswers = make([]string, len(s.answers))
		for i, a := range s.answers {
			req.SelectedAnswers[i] = *a
		}
	}
	s.mu.RUnlock()
	if !ready {
		return nil, ErrUnanswered
	}

	defer s.begin()()

	req.UserID = s.guestUserID
	if s.session.IsAuthenticated() && s.session.UserID() != 0 {
		req.UserID = s.session.UserID()
	}

	submit := s.primary.SubmitGrammar
	if kind == KindVocabulary {
		submit = s.primary.SubmitVocabulary
	}
	result, _, err := resilience.Policy[*models.QuizResult]{
		Name: "submit " + string(kind) + " quiz",
		Primary: func(ctx context.Context) (*models.QuizResult, error) {
			return submit(ctx, req)
		},
	}.Do(ctx)
	if err != nil {
		s.setErr(msgSubmit)
		return nil, err
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
	return result, nil
}

// GrammarResult fetches the learner's result for a grammar topic.
func (s *Store) GrammarResult(ctx context.Context, topicID int) (*models.QuizResult, error) {
	defer s.begin()()

	result, _, err := resilience.Policy[*models.QuizResult]{
		Name: "grammar result",
		Primary: func(ctx context.Context) (*models.QuizResult, error) {
			return s.primary.GrammarResult(ctx, topicID)
		},
		Public: func(ctx context.Context) (*models.QuizResult, error) {
			return s.public.GrammarResult(ctx, topicID)
		},
	}.Do(ctx)
	if err != nil {
		s.setErr(msgResult)
		return nil, err
	}
	return result, nil
}

// Reset abandons the quiz in progress.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.index = 0
	s.answers = nil
	s.result = nil
	s.err = ""
}

// ShuffledAnswers returns the correct answers and distractors of q in random
// order. The order differs between calls.
func (s *Store) ShuffledAnswers(q models.Question) []string {
	all := make([]string, 0, len(q.CorrectAnswers)+len(q.OtherAnswers))
	all = append(all, q.CorrectAnswers...)
	all = append(all, q.OtherAnswers...)

	s.mu.Lock()
	s.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	s.mu.Unlock()
	return all
}

func IsAnswerCorrect(q models.Question, answer string) bool {
	return answer != "" && slices.Contains(q.CorrectAnswers, answer)
}

// Score is the rounded percentage of correctly answered questions, 0 before
// any answer is recorded.
func (s *Store) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answered, correct := 0, 0
	for i, a := range s.answers {
		if a == nil {
			continue
		}
		answered++
		if IsAnswerCorrect(s.current[i], *a) {
			correct++
		}
	}
	if answered == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(len(s.current)) * 100))
}

func (s *Store) CanSubmit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return canSubmit(s.current, s.answers)
}

func canSubmit(current []models.Question, answers []*string) bool {
	if len(current) == 0 {
		return false
	}
	for _, a := range answers {
		if a == nil {
			return false
		}
	}
	return true
}

func (s *Store) CurrentQuestion() (models.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index >= len(s.current) {
		return models.Question{}, false
	}
	return s.current[s.index], true
}

func (s *Store) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Answer returns the answer recorded for question i.
func (s *Store) Answer(i int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.answers) || s.answers[i] == nil {
		return "", false
	}
	return *s.answers[i], true
}

func (s *Store) TotalQuestions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.current)
}

// Progress is the rounded percentage of the quiz reached by the current
// question.
func (s *Store) Progress() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.current) == 0 {
		return 0
	}
	return int(math.Round(float64(s.index+1) / float64(len(s.current)) * 100))
}

func (s *Store) IsLastQuestion() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index == len(s.current)-1
}

func (s *Store) Kind() Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

func (s *Store) Result() *models.QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *Store) GrammarQuizzes() []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.grammar)
}

func (s *Store) VocabularyQuizzes() []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.vocabulary)
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
