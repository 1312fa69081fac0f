package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lingo-client/internal/api"
	"lingo-client/internal/grammar"
	"lingo-client/internal/quiz"
	"lingo-client/internal/resilience"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[web] failed to encode response: %v", err)
		code = http.StatusInternalServerError
		response = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithFailure maps a store or gateway error to a status code. message
// is what the learner sees; the error itself is only logged.
func respondWithFailure(w http.ResponseWriter, err error, message string) {
	code := http.StatusBadGateway
	switch {
	case errors.Is(err, grammar.ErrNotAuthenticated), api.IsAuth(err):
		code = http.StatusUnauthorized
	case errors.Is(err, quiz.ErrUnanswered):
		code = http.StatusBadRequest
		message = err.Error()
	case api.KindOf(err) == api.KindValidation:
		code = http.StatusBadRequest
	case errors.Is(err, resilience.ErrExhausted) && api.KindOf(err) == 0:
		code = http.StatusServiceUnavailable
	}
	log.Printf("[web] %s: %v", message, err)
	respondWithError(w, code, message)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(muxVar(r, name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
