package web

import (
	"net/http"

	"lingo-client/internal/models"
)

func (s *Server) adminAddLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level string `json:"level"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Level == "" {
		respondWithError(w, http.StatusBadRequest, "Level name is required")
		return
	}

	levels := s.app.Gateway.Levels()
	if _, err := levels.Add(r.Context(), req.Level); err != nil {
		respondWithFailure(w, err, "Failed to add level")
		return
	}
	all, err := levels.List(r.Context())
	if err != nil {
		respondWithFailure(w, err, "Failed to load levels")
		return
	}
	s.app.Grammar.LoadLevels(r.Context())
	respondWithJSON(w, http.StatusCreated, all)
}

func (s *Server) adminAddLessons(w http.ResponseWriter, r *http.Request) {
	var lessons []models.Lesson
	if !decodeBody(w, r, &lessons) {
		return
	}
	if len(lessons) == 0 {
		respondWithError(w, http.StatusBadRequest, "No lessons to add")
		return
	}
	resp, err := s.app.Grammar.AddLessons(r.Context(), lessons)
	if err != nil {
		respondWithFailure(w, err, s.app.Grammar.Err())
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) adminAddCategories(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Titles []string `json:"titles"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Titles) == 0 {
		respondWithError(w, http.StatusBadRequest, "No categories to add")
		return
	}
	resp, err := s.app.Vocabulary.AddCategories(r.Context(), req.Titles)
	if err != nil {
		respondWithFailure(w, err, s.app.Vocabulary.Err())
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (s *Server) adminAddWords(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	var words []models.Word
	if !decodeBody(w, r, &words) {
		return
	}
	if len(words) == 0 {
		respondWithError(w, http.StatusBadRequest, "No words to add")
		return
	}
	resp, err := s.app.Vocabulary.AddWords(r.Context(), categoryID, words)
	if err != nil {
		respondWithFailure(w, err, s.app.Vocabulary.Err())
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}
