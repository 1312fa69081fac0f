package models

// Level is a flat reference category lessons belong to (beginner, elementary...).
type Level struct {
	ID    int    `json:"id"`
	Level string `json:"level"`
}

// Lesson is one grammar topic. Ended is only meaningful in the "my lessons"
// view, where it marks the lesson as completed by the current user.
type Lesson struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Rules       string `json:"rules"`
	Example     string `json:"example"`
	Ended       bool   `json:"ended"`
	Levels      *Level `json:"levels,omitempty"`
	Assignment  string `json:"assignment"`
	Score       int    `json:"score"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// LevelID returns the id of the level the lesson belongs to, or 0.
func (l Lesson) LevelID() int {
	if l.Levels == nil {
		return 0
	}
	return l.Levels.ID
}

// Topic is an entry of the grammar topic list used by quizzes.
type Topic struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type VocabularyCategory struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Word struct {
	ID          int    `json:"id"`
	Group       string `json:"group"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Definition  string `json:"definition"`
	Example     string `json:"example"`
	Levels      string `json:"levels"`
	AudioURL    string `json:"audioUrl"`
	Score       int    `json:"score"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Question types returned by the quiz endpoints.
const (
	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionFillBlank      = "FILL_BLANK"
	QuestionOrderWords     = "ORDER_WORDS"
	QuestionTranslation    = "TRANSLATION"
)

// Question is one quiz item. A quiz is an ordered slice of questions.
type Question struct {
	ID             int      `json:"id"`
	QuizID         int      `json:"quizId,omitempty"`
	SectionID      int      `json:"sectionId"`
	SectionType    string   `json:"sectionType"`
	Question       string   `json:"question"`
	Type           string   `json:"type"`
	CorrectAnswers []string `json:"correctAnswers"`
	OtherAnswers   []string `json:"otherAnswers"`
}

type AnswerQuizRequest struct {
	QuizID          int      `json:"quizId"`
	UserID          int      `json:"userId"`
	SelectedAnswers []string `json:"selectedAnswers"`
}

type QuizResult struct {
	TopicID      int    `json:"topicId"`
	TopicName    string `json:"topicName"`
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	CorrectCount int    `json:"correctCount"`
	GainedScore  int    `json:"gainedScore"`
}

// Achievement is an entry of the static gamification catalog. Only Unlocked
// changes at runtime.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Points      int    `json:"points"`
}

type Profile struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	LangLevel string `json:"langLevel"`
	ImageURL  string `json:"imageUrl"`
}

// Section types reported by the user progress endpoint.
const (
	SectionGrammar        = "GRAMMAR"
	SectionVocabulary     = "VOCABULARY"
	SectionGame           = "GAME"
	SectionVideo          = "VIDEO"
	SectionGrammarAndQuiz = "GRAMMAR_AND_QUIZ"
)

type ProgressEntry struct {
	ID          int    `json:"id"`
	SectionType string `json:"sectionType"`
	Score       int    `json:"score"`
	CompletedAt string `json:"completedAt"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	LevelID   int    `json:"levelId"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type Token struct {
	AccessToken string `json:"accessToken"`
}

// Response is the generic acknowledgement returned by mutating endpoints.
type Response struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
