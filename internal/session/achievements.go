package session

import "lingo-client/internal/models"

const (
	AchievementFirstLesson      = "first_lesson"
	AchievementStreak5          = "streak_5"
	AchievementStreak10         = "streak_10"
	AchievementPoints100        = "points_100"
	AchievementGrammarMaster    = "grammar_master"
	AchievementVocabularyExpert = "vocabulary_expert"
)

const (
	grammarMasterLessons  = 20
	vocabularyExpertWords = 500
)

// Catalog returns a fresh copy of the achievement catalog, all locked.
func Catalog() []models.Achievement {
	return []models.Achievement{
		{ID: AchievementFirstLesson, Name: "First Steps", Description: "Complete your first lesson", Icon: "🎯", Points: 10},
		{ID: AchievementStreak5, Name: "Consistent Learner", Description: "Study for 5 days in a row", Icon: "🔥", Points: 25},
		{ID: AchievementStreak10, Name: "Dedicated Student", Description: "Study for 10 days in a row", Icon: "⚡", Points: 50},
		{ID: AchievementPoints100, Name: "Point Collector", Description: "Earn 100 points", Icon: "💎", Points: 20},
		{ID: AchievementGrammarMaster, Name: "Grammar Master", Description: "Complete all grammar lessons", Icon: "📚", Points: 100},
		{ID: AchievementVocabularyExpert, Name: "Vocabulary Expert", Description: "Learn 500 words", Icon: "📖", Points: 100},
	}
}

// earned reports whether the counters satisfy the achievement's condition.
func earned(id string, u *User, p *Progress) bool {
	switch id {
	case AchievementFirstLesson:
		return u.LessonsCompleted >= 1
	case AchievementStreak5:
		return u.StreakDays >= 5
	case AchievementStreak10:
		return u.StreakDays >= 10
	case AchievementPoints100:
		return u.Points >= 100
	case AchievementGrammarMaster:
		return len(p.Grammar.CompletedLessons) >= grammarMasterLessons
	case AchievementVocabularyExpert:
		return p.Vocabulary.TotalWordsLearned >= vocabularyExpertWords
	}
	return false
}

// mergeUnlocked applies the unlocked flags of a persisted snapshot to the
// current catalog. Unknown ids in the snapshot are ignored.
func mergeUnlocked(catalog, stored []models.Achievement) []models.Achievement {
	unlocked := make(map[string]bool, len(stored))
	for _, a := range stored {
		if a.Unlocked {
			unlocked[a.ID] = true
		}
	}
	for i := range catalog {
		catalog[i].Unlocked = unlocked[catalog[i].ID]
	}
	return catalog
}
