// Package session holds the learner's identity, progress counters and
// achievements, mirrored to durable storage after every change.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"lingo-client/internal/models"
	"lingo-client/internal/storage"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// dateLayout is the calendar-day granularity used for streaks.
const dateLayout = "2006-01-02"

type User struct {
	ID               int    `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	LearningLevel    string `json:"learning_level"`
	Avatar           string `json:"avatar,omitempty"`
	Points           int    `json:"points"`
	StreakDays       int    `json:"streak_days"`
	TotalStudyTime   int    `json:"total_study_time"`
	LessonsCompleted int    `json:"lessons_completed"`
	TestsPassed      int    `json:"tests_passed"`
	CreatedAt        string `json:"created_at,omitempty"`
	LastLogin        string `json:"last_login,omitempty"`
}

func newUser() User {
	return User{LearningLevel: "beginner"}
}

type GrammarProgress struct {
	CompletedLessons []int `json:"completed_lessons"`
	CurrentLesson    int   `json:"current_lesson"`
	TotalScore       int   `json:"total_score"`
}

type VocabularyProgress struct {
	CompletedSets     []int `json:"completed_sets"`
	CurrentSet        int   `json:"current_set"`
	TotalWordsLearned int   `json:"total_words_learned"`
}

type GamesProgress struct {
	GamesPlayed          int            `json:"games_played"`
	HighScores           map[string]int `json:"high_scores"`
	AchievementsUnlocked []string       `json:"achievements_unlocked"`
}

type Progress struct {
	Grammar    GrammarProgress    `json:"grammar"`
	Vocabulary VocabularyProgress `json:"vocabulary"`
	Games      GamesProgress      `json:"games"`
}

func newProgress() Progress {
	return Progress{
		Grammar:    GrammarProgress{CompletedLessons: []int{}, CurrentLesson: 1},
		Vocabulary: VocabularyProgress{CompletedSets: []int{}, CurrentSet: 1},
		Games:      GamesProgress{HighScores: map[string]int{}, AchievementsUnlocked: []string{}},
	}
}

func (p Progress) clone() Progress {
	p.Grammar.CompletedLessons = slices.Clone(p.Grammar.CompletedLessons)
	p.Vocabulary.CompletedSets = slices.Clone(p.Vocabulary.CompletedSets)
	p.Games.AchievementsUnlocked = slices.Clone(p.Games.AchievementsUnlocked)
	scores := make(map[string]int, len(p.Games.HighScores))
	for k, v := range p.Games.HighScores {
		scores[k] = v
	}
	p.Games.HighScores = scores
	return p
}

type StudyDay struct {
	Date             string `json:"date"`
	Duration         int    `json:"duration"`
	LessonsCompleted int    `json:"lessons_completed"`
}

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	SignIn(ctx context.Context, req models.SignInRequest) (*models.Token, error)
}

// ProfileSource returns the signed-in learner's profile.
type ProfileSource interface {
	Profile(ctx context.Context) (*models.Profile, error)
}

// Store is the single session of one application instance. It is safe for
// concurrent use.
type Store struct {
	storage storage.Storage
	now     func() time.Time

	mu           sync.RWMutex
	state        State
	user         User
	progress     Progress
	achievements []models.Achievement
	history      []StudyDay
	listeners    []func()
	storageErr   error
}

type Option func(*Store)

// WithClock replaces time.Now, for streak and token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:      st,
		now:          time.Now,
		user:         newUser(),
		progress:     newProgress(),
		achievements: Catalog(),
		history:      []StudyDay{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn exchanges credentials for a token and moves the session to
// Authenticated. The token is persisted before the call returns.
func (s *Store) SignIn(ctx context.Context, auth Authenticator, req models.SignInRequest) error {
	token, err := auth.SignIn(ctx, req)
	if err != nil {
		return err
	}
	if err := s.storage.Set(storage.KeyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = newUser()
	s.progress = newProgress()
	s.achievements = Catalog()
	s.history = []StudyDay{}
	s.user.Email = req.Email
	if claims, err := ParseClaims(token.AccessToken); err == nil {
		s.user.ID = claims.subjectID()
		if claims.Email != "" {
			s.user.Email = claims.Email
		}
	} else {
		log.Printf("[session] access token is not a readable JWT: %v", err)
	}
	s.user.LastLogin = s.now().UTC().Format(time.RFC3339)
	s.state = Authenticated
	s.persistLocked()

	log.Printf("[session] signed in user %d", s.user.ID)
	return nil
}

// RefreshProfile copies the backend profile into the user record.
func (s *Store) RefreshProfile(ctx context.Context, src ProfileSource) error {
	profile, err := src.Profile(ctx)
	if err != nil {
		return err
	}
	s.SetUserData(func(u *User) {
		u.FullName = profile.FullName
		if profile.Email != "" {
			u.Email = profile.Email
		}
		if profile.LangLevel != "" {
			u.LearningLevel = profile.LangLevel
		}
		u.Avatar = profile.ImageURL
	})
	return nil
}

// Restore rebuilds the session from durable storage. It succeeds only when a
// non-expired token is stored; snapshots that fail to decode are skipped.
func (s *Store) Restore() bool {
	token, ok := s.storage.Get(storage.KeyAccessToken)
	if !ok || token == "" || !TokenValid(token, s.now()) {
		return false
	}

	user := newUser()
	progress := newProgress()
	var achievements []models.Achievement
	history := []StudyDay{}

	storage.GetJSON(s.storage, storage.KeyUserInfo, &user)
	storage.GetJSON(s.storage, storage.KeyUserProgress, &progress)
	storage.GetJSON(s.storage, storage.KeyUserAchievements, &achievements)
	storage.GetJSON(s.storage, storage.KeyStudyHistory, &history)

	if user.ID == 0 {
		if claims, err := ParseClaims(token); err == nil {
			user.ID = claims.subjectID()
		}
	}
	if progress.Games.HighScores == nil {
		progress.Games.HighScores = map[string]int{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.progress = progress
	s.achievements = mergeUnlocked(Catalog(), achievements)
	s.history = history
	s.state = Authenticated
	log.Printf("[session] restored session for user %d", user.ID)
	return true
}

// SignOut resets the session and removes every persisted key. Listeners
// registered with OnSignOut run after the state is cleared.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.state = Anonymous
	s.user = newUser()
	s.progress = newProgress()
	s.achievements = Catalog()
	s.history = []StudyDay{}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	err := s.storage.Remove(
		storage.KeyAccessToken,
		storage.KeyUserInfo,
		storage.KeyUserProgress,
		storage.KeyUserAchievements,
		storage.KeyStudyHistory,
	)
	if err != nil {
		log.Printf("[session] failed to clear stored session: %v", err)
	}

	for _, fn := range listeners {
		fn()
	}
}

// OnSignOut registers fn to run after every sign-out.
func (s *Store) OnSignOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetUserData applies update to the user record.
func (s *Store) SetUserData(update func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.user)
	s.checkAchievementsLocked()
	s.persistLocked()
}

// UpdateProgress applies update to the progress counters.
func (s *Store) UpdateProgress(update func(*Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.progress)
	s.checkAchievementsLocked()
	s.persistLocked()
}

func (s *Store) AddPoints(points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addPointsLocked(points)
	s.persistLocked()
}

// CompleteLesson records a finished lesson. It reports false, and changes
// nothing, when the lesson was already recorded.
func (s *Store) CompleteLesson(lessonID, score int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.progress.Grammar.CompletedLessons, lessonID) {
		return false
	}
	s.progress.Grammar.CompletedLessons = append(s.progress.Grammar.CompletedLessons, lessonID)
	s.progress.Grammar.TotalScore += score
	s.user.LessonsCompleted++
	s.addPointsLocked(score)
	s.persistLocked()
	return true
}

// LearnVocabulary records a finished word set worth two points per word. It
// reports false when the set was already recorded.
func (s *Store) LearnVocabulary(setID, wordsLearned int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.progress.Vocabulary.CompletedSets, setID) {
		return false
	}
	s.progress.Vocabulary.CompletedSets = append(s.progress.Vocabulary.CompletedSets, setID)
	s.progress.Vocabulary.TotalWordsLearned += wordsLearned
	s.addPointsLocked(wordsLearned * 2)
	s.persistLocked()
	return true
}

// UpdateStreak counts today as a study day unless the last recorded study
// day already is today. The streak never resets on a gap.
func (s *Store) UpdateStreak() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format(dateLayout)
	if n := len(s.history); n > 0 && s.history[n-1].Date == today {
		return false
	}
	s.user.StreakDays++
	s.history = append(s.history, StudyDay{Date: today})
	s.checkAchievementsLocked()
	s.persistLocked()
	return true
}

// UnlockAchievement unlocks id and grants its points once. Unknown or already
// unlocked ids are a no-op.
func (s *Store) UnlockAchievement(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.unlockLocked(id)
	if ok {
		s.checkAchievementsLocked()
		s.persistLocked()
	}
	return ok
}

func (s *Store) addPointsLocked(points int) {
	s.user.Points += points
	s.checkAchievementsLocked()
}

// checkAchievementsLocked unlocks every earned achievement. Unlocking grants
// points, which can earn further achievements, so it scans until stable.
func (s *Store) checkAchievementsLocked() {
	for {
		changed := false
		for i := range s.achievements {
			a := &s.achievements[i]
			if !a.Unlocked && earned(a.ID, &s.user, &s.progress) {
				s.unlockLocked(a.ID)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (s *Store) unlockLocked(id string) bool {
	for i := range s.achievements {
		a := &s.achievements[i]
		if a.ID != id {
			continue
		}
		if a.Unlocked {
			return false
		}
		a.Unlocked = true
		s.user.Points += a.Points
		s.progress.Games.AchievementsUnlocked = append(s.progress.Games.AchievementsUnlocked, id)
		log.Printf("[session] achievement %q unlocked (+%d points)", id, a.Points)
		return true
	}
	return false
}

func (s *Store) persistLocked() {
	snapshots := []struct {
		key   string
		value any
	}{
		{storage.KeyUserInfo, s.user},
		{storage.KeyUserProgress, s.progress},
		{storage.KeyUserAchievements, s.achievements},
		{storage.KeyStudyHistory, s.history},
	}
	var errs []error
	for _, snap := range snapshots {
		if err := storage.SetJSON(s.storage, snap.key, snap.value); err != nil {
			log.Printf("[session] failed to persist %s: %v", snap.key, err)
			errs = append(errs, fmt.Errorf("persist %s: %w", snap.key, err))
		}
	}
	s.storageErr = errors.Join(errs...)
}

// StorageErr returns the failure of the last attempt to save the learner's
// data, or nil when it was saved completely.
func (s *Store) StorageErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storageErr
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) IsAuthenticated() bool { return s.State() == Authenticated }

func (s *Store) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// UserID returns the signed-in user's id, or 0 when anonymous.
func (s *Store) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return 0
	}
	return s.user.ID
}

func (s *Store) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.clone()
}

func (s *Store) Achievements() []models.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.achievements)
}

func (s *Store) UnlockedAchievements() []models.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var unlocked []models.Achievement
	for _, a := range s.achievements {
		if a.Unlocked {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

func (s *Store) UnlockedCount() int { return len(s.UnlockedAchievements()) }

func (s *Store) TotalAchievements() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.achievements)
}

func (s *Store) TotalPoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Points
}

func (s *Store) StudyHistory() []StudyDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// Token returns the stored access token.
func (s *Store) Token() (string, bool) {
	token, ok := s.storage.Get(storage.KeyAccessToken)
	return token, ok && token != ""
}

func (s *Store) HasStoredToken() bool {
	_, ok := s.Token()
	return ok
}

// TokenValid reports whether the stored token exists and has not expired.
func (s *Store) TokenValid() bool {
	token, ok := s.Token()
	return ok && TokenValid(token, s.now())
}
