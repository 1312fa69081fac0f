package grammar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"lingo-client/internal/models"
	"lingo-client/internal/resilience"
)

var errUnavailable = errors.New("unavailable")

// fakeSource answers from fixed data; a nil slice makes the call fail.
type fakeSource struct {
	mu        sync.Mutex
	levels    []models.Level
	lessons   []models.Lesson
	topics    []models.Topic
	mine      map[int][]models.Lesson
	endErr    error
	ended     []int
	added     []models.Lesson
	myCalls   []string
	lessonErr error
}

func (f *fakeSource) Levels(context.Context) ([]models.Level, error) {
	if f.levels == nil {
		return nil, errUnavailable
	}
	return f.levels, nil
}

func (f *fakeSource) Lessons(context.Context) ([]models.Lesson, error) {
	if f.lessons == nil {
		return nil, errUnavailable
	}
	return f.lessons, nil
}

func (f *fakeSource) MyLessons(_ context.Context, userID, levelID int) ([]models.Lesson, error) {
	f.mu.Lock()
	f.myCalls = append(f.myCalls, fmt.Sprintf("%d/%d", userID, levelID))
	f.mu.Unlock()
	lessons, ok := f.mine[levelID]
	if !ok {
		return nil, errUnavailable
	}
	return lessons, nil
}

func (f *fakeSource) EndLesson(_ context.Context, _, topicID int) (*models.Response, error) {
	f.ended = append(f.ended, topicID)
	if f.endErr != nil {
		return nil, f.endErr
	}
	return &models.Response{Success: true}, nil
}

func (f *fakeSource) TopicList(context.Context) ([]models.Topic, error) {
	if f.topics == nil {
		return nil, errUnavailable
	}
	return f.topics, nil
}

func (f *fakeSource) LessonByID(_ context.Context, id int) (*models.Lesson, error) {
	if f.lessonErr != nil {
		return nil, f.lessonErr
	}
	for _, l := range f.lessons {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, errUnavailable
}

func (f *fakeSource) AddLessons(_ context.Context, lessons []models.Lesson) (*models.Response, error) {
	f.added = append(f.added, lessons...)
	f.lessons = append(f.lessons, lessons...)
	return &models.Response{Success: true}, nil
}

type fakeSession struct {
	userID    int
	completed map[int]int
}

func (f *fakeSession) IsAuthenticated() bool { return f.userID != 0 }
func (f *fakeSession) UserID() int           { return f.userID }

func (f *fakeSession) CompleteLesson(id, score int) bool {
	if f.completed == nil {
		f.completed = map[int]int{}
	}
	if _, ok := f.completed[id]; ok {
		return false
	}
	f.completed[id] = score
	return true
}

func level(id int, name string) *models.Level { return &models.Level{ID: id, Level: name} }

func catalog() ([]models.Level, []models.Lesson) {
	levels := []models.Level{{ID: 1, Level: "beginner"}, {ID: 2, Level: "elementary"}, {ID: 3, Level: "advanced"}}
	lessons := []models.Lesson{
		{ID: 10, Title: "Greetings", Levels: level(1, "beginner"), Score: 5},
		{ID: 11, Title: "Introductions", Levels: level(1, "beginner"), Score: 5},
		{ID: 12, Title: "Numbers", Levels: level(1, "beginner"), Score: 5},
		{ID: 20, Title: "Past simple", Levels: level(2, "elementary"), Score: 10},
	}
	return levels, lessons
}

func TestAuthFailureFallsBackToPublicWithoutError(t *testing.T) {
	levels, _ := catalog()
	primary := &fakeSource{}
	public := &fakeSource{levels: levels}
	s := New(primary, public, &fakeSession{})

	out := s.LoadLevels(context.Background())
	if out.Tier != resilience.TierPublic {
		t.Fatalf("Tier = %v, want public", out.Tier)
	}
	if len(s.Levels()) != 3 || s.Err() != "" {
		t.Errorf("levels = %v, err = %q", s.Levels(), s.Err())
	}
}

func TestStaticDefaultsSetError(t *testing.T) {
	s := New(&fakeSource{}, &fakeSource{}, &fakeSession{})

	s.LoadLevels(context.Background())
	if got := s.Levels(); len(got) != 4 || got[0].Level != "beginner" || got[3].Level != "advanced" {
		t.Errorf("Levels() = %v, want the four canonical levels", got)
	}
	if s.Err() != msgLevels {
		t.Errorf("Err() = %q", s.Err())
	}

	s.LoadLessons(context.Background())
	if got := s.Lessons(); len(got) != 2 || got[0].Title != "Greetings in English" {
		t.Errorf("Lessons() = %v", got)
	}
	if s.Err() != msgLessons {
		t.Errorf("Err() = %q", s.Err())
	}
	if s.IsLoading() {
		t.Error("IsLoading() must be false once the load returns")
	}
}

func TestLoadAllAcceptsPartialMyLessons(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{
		levels:  levels,
		lessons: lessons,
		topics:  []models.Topic{{ID: 10, Title: "Greetings"}},
		mine: map[int][]models.Lesson{
			1: {{ID: 10, Levels: level(1, "beginner"), Ended: true, Score: 5}, {ID: 11, Levels: level(1, "beginner"), Score: 5}},
		},
	}
	public := &fakeSource{mine: map[int][]models.Lesson{
		2: {{ID: 20, Levels: level(2, "elementary"), Ended: true, Score: 10}},
	}}
	s := New(primary, public, &fakeSession{userID: 7})

	s.LoadAll(context.Background())

	mine := s.MyLessons()
	if len(mine) != 3 {
		t.Fatalf("MyLessons() = %v", mine)
	}
	if mine[0].ID != 10 || mine[2].ID != 20 {
		t.Errorf("results should follow level order, got %v", mine)
	}
	if s.Err() != msgMyLessons {
		t.Errorf("level 3 failed on both tiers, Err() = %q", s.Err())
	}
	if len(s.Topics()) != 1 {
		t.Errorf("Topics() = %v", s.Topics())
	}

	if got := s.LevelProgress(1); got != 33 {
		t.Errorf("LevelProgress(1) = %d, want 33", got)
	}
	if got := s.LevelProgress(2); got != 100 {
		t.Errorf("LevelProgress(2) = %d, want 100", got)
	}
	if got := s.LevelProgress(3); got != 0 {
		t.Errorf("empty level must be 0%%, got %d", got)
	}
	if s.TotalScore() != 20 || len(s.CompletedLessons()) != 2 {
		t.Errorf("TotalScore() = %d, completed = %d", s.TotalScore(), len(s.CompletedLessons()))
	}
	if !s.IsLessonCompleted(10) || s.IsLessonCompleted(11) {
		t.Error("completion flags do not match the lesson view")
	}
	if s.LessonProgress(10) != 100 || s.LessonProgress(11) != 0 {
		t.Error("LessonProgress should be 100 or 0")
	}
}

func TestCompletionSurvivesFailedLevelReload(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{
		levels:  levels,
		lessons: lessons,
		mine: map[int][]models.Lesson{
			1: {{ID: 10, Levels: level(1, "beginner"), Ended: true, Score: 5}, {ID: 11, Levels: level(1, "beginner"), Score: 5}},
			2: {}, 3: {},
		},
	}
	s := New(primary, &fakeSource{}, &fakeSession{userID: 7})
	s.LoadAll(context.Background())
	if !s.IsLessonCompleted(10) || s.LevelProgress(1) != 33 {
		t.Fatalf("first load: completed(10) = %v, progress(1) = %d", s.IsLessonCompleted(10), s.LevelProgress(1))
	}

	delete(primary.mine, 1)
	report := s.LoadMyLessons(context.Background())
	if report.OK() || s.Err() != msgMyLessons {
		t.Errorf("level 1 failed on both tiers, report = %+v, Err() = %q", report, s.Err())
	}
	if !s.IsLessonCompleted(10) {
		t.Error("a completed lesson must stay completed when its level fails to reload")
	}
	if got := s.LevelProgress(1); got != 33 {
		t.Errorf("LevelProgress(1) = %d, want 33", got)
	}
	if len(s.MyLessons()) != 2 {
		t.Errorf("entries of the failed level should be kept, got %v", s.MyLessons())
	}
}

func TestOptimisticCompletionSurvivesStaleReload(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{
		levels:  levels,
		lessons: lessons,
		mine: map[int][]models.Lesson{
			1: {{ID: 10, Levels: level(1, "beginner"), Score: 5}, {ID: 11, Levels: level(1, "beginner"), Score: 5}},
			2: {}, 3: {},
		},
		endErr: errUnavailable,
	}
	s := New(primary, &fakeSource{}, &fakeSession{userID: 7})
	s.LoadAll(context.Background())

	if _, err := s.EndLesson(context.Background(), 10); err == nil {
		t.Fatal("EndLesson() should report the failed confirmation")
	}
	s.LoadMyLessons(context.Background())
	if !s.IsLessonCompleted(10) {
		t.Error("the server still reporting ended=false must not undo a local completion")
	}
	if got := s.LevelProgress(1); got != 33 {
		t.Errorf("LevelProgress(1) = %d, want 33", got)
	}

	s.ClearUserData()
	s.LoadMyLessons(context.Background())
	if s.IsLessonCompleted(10) {
		t.Error("completion flags start over after sign-out")
	}
}

func TestEndLessonBeforeFirstLoadIsKept(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{levels: levels, lessons: lessons, mine: map[int][]models.Lesson{1: {}, 2: {}, 3: {}}}
	s := New(primary, &fakeSource{}, &fakeSession{userID: 7})
	s.LoadLessons(context.Background())
	s.LoadLevels(context.Background())

	if _, err := s.EndLesson(context.Background(), 12); err != nil {
		t.Fatal(err)
	}
	s.LoadMyLessons(context.Background())
	if !s.IsLessonCompleted(12) {
		t.Error("a lesson completed before the first load must survive it")
	}
}

// blockingSource holds Levels until release is closed.
type blockingSource struct {
	*fakeSource
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) Levels(ctx context.Context) ([]models.Level, error) {
	close(b.started)
	<-b.release
	return b.fakeSource.Levels(ctx)
}

func TestIsLoadingWhileInFlight(t *testing.T) {
	levels, _ := catalog()
	primary := &blockingSource{
		fakeSource: &fakeSource{levels: levels},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	s := New(primary, &fakeSource{}, &fakeSession{})

	done := make(chan struct{})
	go func() {
		s.LoadLevels(context.Background())
		close(done)
	}()

	<-primary.started
	if !s.IsLoading() {
		t.Error("IsLoading() must be true while a load is in flight")
	}
	close(primary.release)
	<-done
	if s.IsLoading() {
		t.Error("IsLoading() must be false once the load returns")
	}
}

func TestMyLessonsUsesGuestUser(t *testing.T) {
	levels, _ := catalog()
	primary := &fakeSource{levels: levels, mine: map[int][]models.Lesson{1: {}, 2: {}, 3: {}}}

	s := New(primary, &fakeSource{}, &fakeSession{})
	s.LoadLevels(context.Background())
	s.LoadMyLessons(context.Background())
	if len(primary.myCalls) != 0 {
		t.Errorf("no guest user configured, but calls were made: %v", primary.myCalls)
	}

	s = New(primary, &fakeSource{}, &fakeSession{}, WithGuestUserID(2))
	s.LoadLevels(context.Background())
	s.LoadMyLessons(context.Background())
	if len(primary.myCalls) != 3 || primary.myCalls[0][:2] != "2/" {
		t.Errorf("myCalls = %v", primary.myCalls)
	}
}

func TestEndLessonIsOptimisticAndNotRolledBack(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{levels: levels, lessons: lessons, endErr: errUnavailable}
	sess := &fakeSession{userID: 7}
	s := New(primary, &fakeSource{}, sess)
	s.LoadLessons(context.Background())

	_, err := s.EndLesson(context.Background(), 20)
	if !errors.Is(err, errUnavailable) {
		t.Fatalf("EndLesson() error = %v, want the backend failure", err)
	}
	if !s.IsLessonCompleted(20) {
		t.Error("local completion must survive the failed confirmation")
	}
	if sess.completed[20] != 10 {
		t.Errorf("session should record the lesson score, got %v", sess.completed)
	}
	if s.Err() != msgEnd {
		t.Errorf("Err() = %q", s.Err())
	}
}

func TestEndLessonMarksExistingEntry(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{
		levels: levels, lessons: lessons,
		mine: map[int][]models.Lesson{1: {{ID: 11, Levels: level(1, "beginner"), Score: 5}}},
	}
	s := New(primary, &fakeSource{}, &fakeSession{userID: 7})
	s.LoadAll(context.Background())

	if _, err := s.EndLesson(context.Background(), 11); err != nil {
		t.Fatalf("EndLesson() failed: %v", err)
	}
	mine := s.MyLessons()
	if len(mine) != 1 || !mine[0].Ended {
		t.Errorf("MyLessons() = %v", mine)
	}
	if len(primary.ended) != 1 || primary.ended[0] != 11 {
		t.Errorf("backend calls = %v", primary.ended)
	}
}

func TestEndLessonRequiresSignIn(t *testing.T) {
	primary := &fakeSource{}
	s := New(primary, &fakeSource{}, &fakeSession{})

	if _, err := s.EndLesson(context.Background(), 1); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v", err)
	}
	if len(primary.ended) != 0 {
		t.Error("no request should be sent for an anonymous visitor")
	}
}

func TestAddLessonsReloadsCatalog(t *testing.T) {
	_, lessons := catalog()
	primary := &fakeSource{lessons: lessons}
	s := New(primary, &fakeSource{}, &fakeSession{userID: 1})

	added := []models.Lesson{{ID: 30, Title: "Conditionals", Levels: level(3, "advanced")}}
	if _, err := s.AddLessons(context.Background(), added); err != nil {
		t.Fatalf("AddLessons() failed: %v", err)
	}
	if _, ok := s.LessonByIDLocal(30); !ok {
		t.Error("catalog should include the new lesson after reload")
	}
	if len(s.LessonsForLevel(3)) != 1 {
		t.Errorf("LessonsForLevel(3) = %v", s.LessonsForLevel(3))
	}
}

func TestLessonByIDFallsBackToCatalog(t *testing.T) {
	_, lessons := catalog()
	primary := &fakeSource{lessons: lessons}
	s := New(primary, &fakeSource{}, &fakeSession{})
	s.LoadLessons(context.Background())

	primary.lessonErr = errUnavailable
	lesson, err := s.LessonByID(context.Background(), 12)
	if err != nil || lesson.Title != "Numbers" {
		t.Fatalf("LessonByID() = %v, %v", lesson, err)
	}
	if _, err := s.LessonByID(context.Background(), 99); err == nil {
		t.Error("unknown lesson with both tiers down should fail")
	}
}

func TestClearUserData(t *testing.T) {
	levels, lessons := catalog()
	primary := &fakeSource{levels: levels, lessons: lessons, mine: map[int][]models.Lesson{1: {{ID: 10, Ended: true}}}}
	s := New(primary, &fakeSource{}, &fakeSession{userID: 3})
	s.LoadAll(context.Background())

	s.ClearUserData()
	if len(s.MyLessons()) != 0 || len(s.Lessons()) != 4 {
		t.Error("sign-out should only drop the learner's lesson view")
	}
}

func TestPercent(t *testing.T) {
	cases := []struct{ completed, total, want int }{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, c := range cases {
		if got := Percent(c.completed, c.total); got != c.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", c.completed, c.total, got, c.want)
		}
	}
}
