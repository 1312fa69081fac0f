package grammar

import (
	"math"
	"slices"

	"lingo-client/internal/models"
)

// LevelLessons is one level with its lessons and how many of them the
// learner has finished.
type LevelLessons struct {
	Level     models.Level    `json:"level"`
	Lessons   []models.Lesson `json:"lessons"`
	Completed int             `json:"completed"`
	Percent   int             `json:"percent"`
}

// Percent returns completed/total as a rounded percentage, 0 for an empty
// total.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// GroupByLevel groups the catalog by level in the order of levels. Completion
// counts come from mine, the per-user lesson view.
func GroupByLevel(levels []models.Level, lessons, mine []models.Lesson) []LevelLessons {
	groups := make([]LevelLessons, 0, len(levels))
	for _, level := range levels {
		group := LevelLessons{Level: level, Lessons: lessonsOfLevel(lessons, level.ID)}
		group.Completed = len(completedOfLevel(mine, level.ID))
		group.Percent = Percent(group.Completed, len(group.Lessons))
		groups = append(groups, group)
	}
	return groups
}

func lessonsOfLevel(lessons []models.Lesson, levelID int) []models.Lesson {
	out := []models.Lesson{}
	for _, l := range lessons {
		if l.LevelID() == levelID {
			out = append(out, l)
		}
	}
	return out
}

func completedOfLevel(mine []models.Lesson, levelID int) []models.Lesson {
	out := []models.Lesson{}
	for _, l := range mine {
		if l.Ended && l.LevelID() == levelID {
			out = append(out, l)
		}
	}
	return out
}

func completed(mine []models.Lesson) []models.Lesson {
	out := []models.Lesson{}
	for _, l := range mine {
		if l.Ended {
			out = append(out, l)
		}
	}
	return out
}

func totalScore(mine []models.Lesson) int {
	total := 0
	for _, l := range mine {
		total += l.Score
	}
	return total
}

// mergeLessons combines a fresh lesson view with the previous one. Completion
// is sticky, and previous entries are kept when their level failed to load or
// when they are completed but missing from the fresh view.
func mergeLessons(prev, fresh []models.Lesson, failedLevels []int) []models.Lesson {
	ended := make(map[int]bool, len(prev))
	for _, l := range prev {
		if l.Ended {
			ended[l.ID] = true
		}
	}

	out := make([]models.Lesson, 0, len(fresh)+len(prev))
	seen := make(map[int]bool, len(fresh))
	for _, l := range fresh {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		if ended[l.ID] {
			l.Ended = true
		}
		out = append(out, l)
	}
	for _, l := range prev {
		if seen[l.ID] {
			continue
		}
		if l.Ended || slices.Contains(failedLevels, l.LevelID()) {
			seen[l.ID] = true
			out = append(out, l)
		}
	}
	return out
}
