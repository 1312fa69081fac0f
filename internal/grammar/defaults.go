package grammar

import "lingo-client/internal/models"

// DefaultLevels is served when neither the authenticated nor the public
// endpoint answers.
func DefaultLevels() []models.Level {
	return []models.Level{
		{ID: 1, Level: "beginner"},
		{ID: 2, Level: "elementary"},
		{ID: 3, Level: "intermediate"},
		{ID: 4, Level: "advanced"},
	}
}

func DefaultLessons() []models.Lesson {
	beginner := &models.Level{ID: 1, Level: "beginner"}
	return []models.Lesson{
		{
			ID:          1,
			Title:       "Greetings in English",
			Description: "Learn how to greet people in English.",
			VideoURL:    "https://www.youtube.com/watch?v=WdA1yztH9cw",
			Rules:       "Use Hello, Hi, Good morning depending on time.",
			Example:     "Hello, how are you?",
			Levels:      beginner,
			Assignment:  "Practice greeting 5 people today.",
			Score:       5,
		},
		{
			ID:          2,
			Title:       "Introducing Yourself",
			Description: "Learn how to introduce yourself in English.",
			VideoURL:    "https://www.youtube.com/watch?v=SDdG0Wc3XGM",
			Rules:       "Say your name, where you are from, and one fact about you.",
			Example:     "My name is Anna, I'm from Spain.",
			Levels:      &models.Level{ID: beginner.ID, Level: beginner.Level},
			Assignment:  "Write 3 sentences to introduce yourself.",
			Score:       5,
		},
	}
}
