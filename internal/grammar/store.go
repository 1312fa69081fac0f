// Package grammar keeps the grammar catalog (levels, lessons, topics) and the
// learner's per-lesson completion view.
package grammar

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"lingo-client/internal/models"
	"lingo-client/internal/resilience"
)

var ErrNotAuthenticated = errors.New("user not authenticated")

const (
	msgLevels    = "Failed to load grammar levels"
	msgLessons   = "Failed to load grammar lessons"
	msgMyLessons = "Failed to load your lessons"
	msgTopics    = "Failed to load topic list"
	msgEnd       = "Failed to end lesson"
	msgAdd       = "Failed to add lessons"
	msgLesson    = "Failed to load lesson"
)

// Source is the grammar endpoint group. The store holds one authenticated
// and one public instance.
type Source interface {
	Levels(ctx context.Context) ([]models.Level, error)
	Lessons(ctx context.Context) ([]models.Lesson, error)
	MyLessons(ctx context.Context, userID, levelID int) ([]models.Lesson, error)
	EndLesson(ctx context.Context, userID, topicID int) (*models.Response, error)
	TopicList(ctx context.Context) ([]models.Topic, error)
	LessonByID(ctx context.Context, id int) (*models.Lesson, error)
	AddLessons(ctx context.Context, lessons []models.Lesson) (*models.Response, error)
}

// Session is the part of the session store grammar needs.
type Session interface {
	IsAuthenticated() bool
	UserID() int
	CompleteLesson(lessonID, score int) bool
}

type Store struct {
	primary     Source
	public      Source
	session     Session
	guestUserID int

	mu        sync.RWMutex
	levels    []models.Level
	lessons   []models.Lesson
	myLessons []models.Lesson
	viewer    int
	topics    []models.Topic
	inflight  int
	err       string
}

type Option func(*Store)

// WithGuestUserID sets the user whose lesson view is shown to anonymous
// visitors. 0 shows none.
func WithGuestUserID(id int) Option {
	return func(s *Store) { s.guestUserID = id }
}

func New(primary, public Source, session Session, opts ...Option) *Store {
	s := &Store{primary: primary, public: public, session: session}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin marks the start of a top-level operation and clears the error slot.
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

func (s *Store) LoadLevels(ctx context.Context) resilience.Outcome {
	defer s.begin()()
	return s.loadLevels(ctx)
}

func (s *Store) loadLevels(ctx context.Context) resilience.Outcome {
	levels, out, _ := resilience.Policy[[]models.Level]{
		Name:     "grammar levels",
		Primary:  s.primary.Levels,
		Public:   s.public.Levels,
		Fallback: DefaultLevels,
	}.Do(ctx)

	s.mu.Lock()
	s.levels = levels
	if out.Degraded() {
		s.err = msgLevels
	}
	s.mu.Unlock()
	return out
}

func (s *Store) LoadLessons(ctx context.Context) resilience.Outcome {
	defer s.begin()()
	return s.loadLessons(ctx)
}

func (s *Store) loadLessons(ctx context.Context) resilience.Outcome {
	lessons, out, _ := resilience.Policy[[]models.Lesson]{
		Name:     "grammar lessons",
		Primary:  s.primary.Lessons,
		Public:   s.public.Lessons,
		Fallback: DefaultLessons,
	}.Do(ctx)

	s.mu.Lock()
	s.lessons = lessons
	if out.Degraded() {
		s.err = msgLessons
	}
	s.mu.Unlock()
	return out
}

func (s *Store) LoadTopicList(ctx context.Context) resilience.Outcome {
	defer s.begin()()
	return s.loadTopicList(ctx)
}

func (s *Store) loadTopicList(ctx context.Context) resilience.Outcome {
	topics, out, _ := resilience.Policy[[]models.Topic]{
		Name:     "grammar topics",
		Primary:  s.primary.TopicList,
		Public:   s.public.TopicList,
		Fallback: func() []models.Topic { return []models.Topic{} },
	}.Do(ctx)

	s.mu.Lock()
	s.topics = topics
	if out.Degraded() {
		s.err = msgTopics
	}
	s.mu.Unlock()
	return out
}

// LoadMyLessons fetches the learner's lesson view for every loaded level and
// merges it into the current one. Lessons of levels that fail keep their
// previous entries, and a lesson once completed stays completed.
func (s *Store) LoadMyLessons(ctx context.Context) resilience.GatherReport[int] {
	defer s.begin()()
	return s.loadMyLessons(ctx)
}

func (s *Store) loadMyLessons(ctx context.Context) resilience.GatherReport[int] {
	userID := s.viewerID()
	if userID == 0 {
		s.mu.Lock()
		s.myLessons, s.viewer = []models.Lesson{}, 0
		s.mu.Unlock()
		return resilience.GatherReport[int]{}
	}

	s.mu.RLock()
	levelIDs := make([]int, 0, len(s.levels))
	for _, l := range s.levels {
		levelIDs = append(levelIDs, l.ID)
	}
	s.mu.RUnlock()

	mine, report := resilience.Gather(ctx, "my lessons", levelIDs, func(levelID int) resilience.Policy[[]models.Lesson] {
		return resilience.Policy[[]models.Lesson]{
			Name: "my lessons",
			Primary: func(ctx context.Context) ([]models.Lesson, error) {
				return s.primary.MyLessons(ctx, userID, levelID)
			},
			Public: func(ctx context.Context) ([]models.Lesson, error) {
				return s.public.MyLessons(ctx, userID, levelID)
			},
		}
	})

	s.mu.Lock()
	if s.viewer != userID {
		s.myLessons, s.viewer = []models.Lesson{}, userID
	}
	s.myLessons = mergeLessons(s.myLessons, mine, report.Failed)
	if !report.OK() {
		s.err = msgMyLessons
	}
	s.mu.Unlock()
	return report
}

// viewerID is the user whose lesson view is loaded.
func (s *Store) viewerID() int {
	if s.session.IsAuthenticated() {
		if id := s.session.UserID(); id != 0 {
			return id
		}
	}
	return s.guestUserID
}

// LoadAll loads levels, lessons and topics concurrently, then the learner's
// lesson view, which depends on the levels.
func (s *Store) LoadAll(ctx context.Context) {
	defer s.begin()()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { s.loadLevels(gctx); return nil })
	g.Go(func() error { s.loadLessons(gctx); return nil })
	g.Go(func() error { s.loadTopicList(gctx); return nil })
	g.Wait()

	s.loadMyLessons(ctx)
}

// EndLesson marks topicID as finished. The local view and the session
// counters are updated before the backend confirms and are kept even when
// the confirmation fails.
func (s *Store) EndLesson(ctx context.Context, topicID int) (*models.Response, error) {
	defer s.begin()()

	userID := s.session.UserID()
	if !s.session.IsAuthenticated() || userID == 0 {
		s.setErr(msgEnd)
		return nil, ErrNotAuthenticated
	}

	score := s.markEnded(userID, topicID)
	s.session.CompleteLesson(topicID, score)

	resp, _, err := resilience.Policy[*models.Response]{
		Name: "end lesson",
		Primary: func(ctx context.Context) (*models.Response, error) {
			return s.primary.EndLesson(ctx, userID, topicID)
		},
	}.Do(ctx)
	if err != nil {
		log.Printf("[grammar] lesson %d kept as completed locally although the backend did not confirm: %v", topicID, err)
		s.setErr(msgEnd)
		return nil, err
	}
	return resp, nil
}

// markEnded flags the lesson in userID's view, adding it from the catalog
// when missing, and returns its score.
func (s *Store) markEnded(userID, topicID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewer != userID {
		s.myLessons, s.viewer = []models.Lesson{}, userID
	}

	if i := slices.IndexFunc(s.myLessons, func(l models.Lesson) bool { return l.ID == topicID }); i >= 0 {
		s.myLessons[i].Ended = true
		return s.myLessons[i].Score
	}
	if i := slices.IndexFunc(s.lessons, func(l models.Lesson) bool { return l.ID == topicID }); i >= 0 {
		lesson := s.lessons[i]
		lesson.Ended = true
		s.myLessons = append(s.myLessons, lesson)
		return lesson.Score
	}
	return 0
}

// AddLessons uploads lessons and reloads the catalog.
func (s *Store) AddLessons(ctx context.Context, lessons []models.Lesson) (*models.Response, error) {
	defer s.begin()()

	resp, _, err := resilience.Policy[*models.Response]{
		Name: "add lessons",
		Primary: func(ctx context.Context) (*models.Response, error) {
			return s.primary.AddLessons(ctx, lessons)
		},
	}.Do(ctx)
	if err != nil {
		s.setErr(msgAdd)
		return nil, err
	}
	s.loadLessons(ctx)
	return resp, nil
}

// LessonByID fetches one lesson, falling back to the loaded catalog.
func (s *Store) LessonByID(ctx context.Context, id int) (*models.Lesson, error) {
	defer s.begin()()

	lesson, _, err := resilience.Policy[*models.Lesson]{
		Name: "lesson",
		Primary: func(ctx context.Context) (*models.Lesson, error) {
			return s.primary.LessonByID(ctx, id)
		},
		Public: func(ctx context.Context) (*models.Lesson, error) {
			return s.public.LessonByID(ctx, id)
		},
	}.Do(ctx)
	if err == nil {
		return lesson, nil
	}
	if local, ok := s.LessonByIDLocal(id); ok {
		s.setErr(msgLesson)
		return &local, nil
	}
	s.setErr(msgLesson)
	return nil, err
}

// ClearUserData drops the learner's lesson view, on sign-out.
func (s *Store) ClearUserData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.myLessons, s.viewer = []models.Lesson{}, 0
}

func (s *Store) Levels() []models.Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.levels)
}

func (s *Store) Lessons() []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lessons)
}

func (s *Store) MyLessons() []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.myLessons)
}

func (s *Store) Topics() []models.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.topics)
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the last failure message, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) LessonByIDLocal(id int) (models.Lesson, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := slices.IndexFunc(s.lessons, func(l models.Lesson) bool { return l.ID == id }); i >= 0 {
		return s.lessons[i], true
	}
	return models.Lesson{}, false
}

func (s *Store) IsLessonCompleted(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.myLessons, func(l models.Lesson) bool { return l.ID == id && l.Ended })
}

// LessonProgress is 100 for a finished lesson and 0 otherwise.
func (s *Store) LessonProgress(id int) int {
	if s.IsLessonCompleted(id) {
		return 100
	}
	return 0
}

func (s *Store) LevelProgress(levelID int) int {
	return s.ProgressByLevel()[levelID]
}

func (s *Store) LessonsForLevel(levelID int) []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lessonsOfLevel(s.lessons, levelID)
}

func (s *Store) CompletedLessonsForLevel(levelID int) []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return completedOfLevel(s.myLessons, levelID)
}

func (s *Store) CompletedLessons() []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return completed(s.myLessons)
}

// TotalScore sums the score of every lesson in the learner's view.
func (s *Store) TotalScore() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalScore(s.myLessons)
}

func (s *Store) LessonsByLevel() []LevelLessons {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GroupByLevel(s.levels, s.lessons, s.myLessons)
}

// ProgressByLevel maps level id to percent complete.
func (s *Store) ProgressByLevel() map[int]int {
	progress := map[int]int{}
	for _, group := range s.LessonsByLevel() {
		progress[group.Level.ID] = group.Percent
	}
	return progress
}
