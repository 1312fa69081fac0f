package web

import (
	"context"
	"log"
	"net/http"
	"strings"

	"lingo-client/internal/models"
)

func (s *Server) mainPage(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"title":         "Main Page",
		"authenticated": s.app.Session.IsAuthenticated(),
		"locale":        s.app.Locale(),
	})
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"title": "Login Page",
		"next":  r.URL.Query().Get("next"),
	})
}

// returnPath is where to go after signing in: the guard's next parameter when
// it is a local path, home otherwise.
func (s *Server) returnPath(r *http.Request) string {
	next := r.URL.Query().Get("next")
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return s.app.Config.Server.HomePath
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if err := s.app.Session.SignIn(r.Context(), s.app.Gateway.Auth(), req); err != nil {
		respondWithFailure(w, err, "Invalid email or password")
		return
	}
	s.afterSignIn(r.Context())

	respondWithJSON(w, http.StatusOK, map[string]any{
		"redirect": s.returnPath(r),
		"user":     s.app.Session.User(),
	})
}

// afterSignIn loads the profile and counts today as a study day. A missing
// profile does not fail the sign-in.
func (s *Server) afterSignIn(ctx context.Context) {
	if err := s.app.Session.RefreshProfile(ctx, s.app.Gateway.User()); err != nil {
		log.Printf("[web] failed to load profile after sign-in: %v", err)
	}
	s.app.Session.UpdateStreak()
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.app.Gateway.Auth().SignUp(r.Context(), req)
	if err != nil {
		respondWithFailure(w, err, "Failed to sign up")
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

// issuedToken hands an already issued token to the session's sign-in flow.
type issuedToken models.Token

func (t issuedToken) SignIn(context.Context, models.SignInRequest) (*models.Token, error) {
	token := models.Token(t)
	return &token, nil
}

func (s *Server) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token, err := s.app.Gateway.Auth().VerifyOTP(r.Context(), req)
	if err != nil {
		respondWithFailure(w, err, "Failed to verify code")
		return
	}
	if token.AccessToken == "" {
		respondWithJSON(w, http.StatusOK, map[string]any{"verified": true})
		return
	}

	if err := s.app.Session.SignIn(r.Context(), issuedToken(*token), models.SignInRequest{Email: req.Email}); err != nil {
		respondWithFailure(w, err, "Failed to start session")
		return
	}
	s.afterSignIn(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{
		"verified": true,
		"redirect": s.app.Config.Server.HomePath,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) resendCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.app.Gateway.Auth().ResendOTP(r.Context(), req.Email)
	if err != nil {
		respondWithFailure(w, err, "Failed to resend code")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.app.Gateway.Auth().ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondWithFailure(w, err, "Failed to request password reset")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.app.Gateway.Auth().ResetPassword(r.Context(), req)
	if err != nil {
		respondWithFailure(w, err, "Failed to reset password")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	s.app.Session.SignOut()
	respondWithJSON(w, http.StatusOK, map[string]string{"redirect": s.app.Config.Server.LoginPath})
}

func (s *Server) setLocale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locale string `json:"locale"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Locale == "" {
		respondWithError(w, http.StatusBadRequest, "Locale is required")
		return
	}
	if err := s.app.SetLocale(req.Locale); err != nil {
		log.Printf("[web] failed to store locale: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to store locale")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"locale": req.Locale})
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	sess := s.app.Session
	page := map[string]any{
		"title":             "Home",
		"user":              sess.User(),
		"points":            sess.TotalPoints(),
		"progress":          sess.Progress(),
		"achievements":      sess.Achievements(),
		"unlockedCount":     sess.UnlockedCount(),
		"totalAchievements": sess.TotalAchievements(),
		"studyHistory":      sess.StudyHistory(),
	}
	if err := sess.StorageErr(); err != nil {
		page["storageError"] = "Progress could not be saved"
	}
	respondWithJSON(w, http.StatusOK, page)
}

// remoteProgress returns the backend's progress log for the learner.
func (s *Server) remoteProgress(w http.ResponseWriter, r *http.Request) {
	entries, err := s.app.Gateway.User().Progress(r.Context())
	if err != nil {
		respondWithFailure(w, err, "Failed to load progress")
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (s *Server) levelUp(w http.ResponseWriter, r *http.Request) {
	resp, err := s.app.Gateway.Levels().Up(r.Context())
	if err != nil {
		respondWithFailure(w, err, "Failed to move to the next level")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}
