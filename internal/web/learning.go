package web

import (
	"net/http"

	"lingo-client/internal/models"
	"lingo-client/internal/quiz"
)

func (s *Server) grammarPage(w http.ResponseWriter, r *http.Request) {
	g := s.app.Grammar
	g.LoadAll(r.Context())

	respondWithJSON(w, http.StatusOK, map[string]any{
		"title":            "Grammar",
		"levels":           g.LessonsByLevel(),
		"topics":           g.Topics(),
		"completedLessons": len(g.CompletedLessons()),
		"totalScore":       g.TotalScore(),
		"error":            g.Err(),
	})
}

func (s *Server) grammarLevelPage(w http.ResponseWriter, r *http.Request) {
	levelID, ok := pathID(w, r, "levelID")
	if !ok {
		return
	}
	g := s.app.Grammar
	if len(g.Levels()) == 0 {
		g.LoadAll(r.Context())
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"levelId":   levelID,
		"lessons":   g.LessonsForLevel(levelID),
		"completed": g.CompletedLessonsForLevel(levelID),
		"progress":  g.LevelProgress(levelID),
		"error":     g.Err(),
	})
}

func (s *Server) grammarLessonPage(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(w, r, "lessonID")
	if !ok {
		return
	}
	g := s.app.Grammar
	lesson, err := g.LessonByID(r.Context(), lessonID)
	if err != nil {
		respondWithFailure(w, err, g.Err())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"lesson":    lesson,
		"completed": g.IsLessonCompleted(lessonID),
		"progress":  g.LessonProgress(lessonID),
	})
}

func (s *Server) endLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := pathID(w, r, "lessonID")
	if !ok {
		return
	}
	resp, err := s.app.Grammar.EndLesson(r.Context(), lessonID)
	if err != nil {
		respondWithFailure(w, err, s.app.Grammar.Err())
		return
	}
	s.app.Session.UpdateStreak()
	respondWithJSON(w, http.StatusOK, map[string]any{
		"response": resp,
		"points":   s.app.Session.TotalPoints(),
	})
}

func (s *Server) vocabularyPage(w http.ResponseWriter, r *http.Request) {
	v := s.app.Vocabulary
	v.LoadCategories(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{
		"title":      "Vocabulary",
		"categories": v.Categories(),
		"error":      v.Err(),
	})
}

func (s *Server) vocabularyWordsPage(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	v := s.app.Vocabulary
	v.LoadWords(r.Context(), categoryID)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"categoryId": categoryID,
		"words":      v.Words(),
		"error":      v.Err(),
	})
}

// vocabularyLearned records the open word set as learned.
func (s *Server) vocabularyLearned(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	v := s.app.Vocabulary
	if selected, ok := v.Selected(); !ok || selected != categoryID {
		if v.LoadWords(r.Context(), categoryID).Degraded() {
			respondWithError(w, http.StatusServiceUnavailable, v.Err())
			return
		}
	}

	recorded := s.app.Session.LearnVocabulary(categoryID, len(v.Words()))
	s.app.Session.UpdateStreak()
	respondWithJSON(w, http.StatusOK, map[string]any{
		"recorded": recorded,
		"points":   s.app.Session.TotalPoints(),
	})
}

func (s *Server) quizState() map[string]any {
	q := s.app.Quiz
	state := map[string]any{
		"kind":      q.Kind(),
		"index":     q.CurrentIndex(),
		"total":     q.TotalQuestions(),
		"progress":  q.Progress(),
		"isLast":    q.IsLastQuestion(),
		"canSubmit": q.CanSubmit(),
		"score":     q.Score(),
		"result":    q.Result(),
		"error":     q.Err(),
	}
	if question, ok := q.CurrentQuestion(); ok {
		state["question"] = map[string]any{
			"id":       question.ID,
			"question": question.Question,
			"type":     question.Type,
			"answers":  q.ShuffledAnswers(question),
		}
		if answer, ok := q.Answer(q.CurrentIndex()); ok {
			state["selected"] = answer
		}
	}
	return state
}

func (s *Server) quizPage(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.quizState())
}

func (s *Server) loadQuestions(r *http.Request, kind quiz.Kind, id int) []models.Question {
	if kind == quiz.KindVocabulary {
		questions, _ := s.app.Quiz.LoadVocabularyQuizzes(r.Context(), id)
		return questions
	}
	questions, _ := s.app.Quiz.LoadGrammarQuizzes(r.Context(), id)
	return questions
}

func (s *Server) quizLoad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	kind := quiz.Kind(muxVar(r, "kind"))
	questions := s.loadQuestions(r, kind, id)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"kind":      kind,
		"questions": len(questions),
		"error":     s.app.Quiz.Err(),
	})
}

func (s *Server) quizStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind quiz.Kind `json:"kind"`
		ID   int       `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Kind != quiz.KindGrammar && req.Kind != quiz.KindVocabulary {
		respondWithError(w, http.StatusBadRequest, "Unknown quiz kind")
		return
	}

	questions := s.loadQuestions(r, req.Kind, req.ID)
	if len(questions) == 0 {
		respondWithError(w, http.StatusNotFound, "No questions available")
		return
	}
	s.app.Quiz.Start(questions, req.Kind)
	respondWithJSON(w, http.StatusOK, s.quizState())
}

func (s *Server) quizAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.app.Quiz.SelectAnswer(req.Answer)
	respondWithJSON(w, http.StatusOK, s.quizState())
}

func (s *Server) quizNext(w http.ResponseWriter, r *http.Request) {
	s.app.Quiz.Next()
	respondWithJSON(w, http.StatusOK, s.quizState())
}

func (s *Server) quizPrevious(w http.ResponseWriter, r *http.Request) {
	s.app.Quiz.Previous()
	respondWithJSON(w, http.StatusOK, s.quizState())
}

func (s *Server) quizSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := s.app.Quiz.Submit(r.Context())
	if err != nil {
		respondWithFailure(w, err, "Failed to submit quiz")
		return
	}
	s.app.Session.UpdateStreak()
	respondWithJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"score":  s.app.Quiz.Score(),
	})
}

func (s *Server) quizResult(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID")
	if !ok {
		return
	}
	result, err := s.app.Quiz.GrammarResult(r.Context(), topicID)
	if err != nil {
		respondWithFailure(w, err, s.app.Quiz.Err())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
