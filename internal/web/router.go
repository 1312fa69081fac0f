// Package web serves the client's screens as JSON views behind the
// navigation guard, for a thin front end or for scripting.
package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"lingo-client/internal/app"
	"lingo-client/internal/guard"
)

// page is one entry of the route table: guard metadata plus the handler.
type page struct {
	guard.Route
	Methods []string
	Handler http.HandlerFunc
}

type Server struct {
	app    *app.App
	router *mux.Router
	routes map[string]guard.Route
}

func NewServer(a *app.App) *Server {
	s := &Server{app: a, router: mux.NewRouter(), routes: map[string]guard.Route{}}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Route returns the metadata of a named route.
func (s *Server) Route(name string) (guard.Route, bool) {
	r, ok := s.routes[name]
	return r, ok
}

func (s *Server) pages() []page {
	login := s.app.Config.Server.LoginPath
	home := s.app.Config.Server.HomePath
	get, post := []string{http.MethodGet}, []string{http.MethodPost}

	return []page{
		{Route: guard.Route{Name: "MainPage", Path: "/", Title: "Main Page", Layout: "default"}, Methods: get, Handler: s.mainPage},
		{Route: guard.Route{Name: "AuthLogin", Path: login, Title: "Login Page", Layout: "auth", AuthPage: true}, Methods: get, Handler: s.loginPage},
		{Route: guard.Route{Name: "SignIn", Path: login, Layout: "auth", AuthPage: true}, Methods: post, Handler: s.signIn},
		{Route: guard.Route{Name: "SignUp", Path: "/auth-register", Title: "Sign Up", Layout: "auth", AuthPage: true}, Methods: post, Handler: s.signUp},
		{Route: guard.Route{Name: "VerifyCode", Path: "/auth-verify", Title: "Verify", Layout: "auth", AuthPage: true}, Methods: post, Handler: s.verifyCode},
		{Route: guard.Route{Name: "ResendCode", Path: "/auth-resend", Layout: "auth", AuthPage: true}, Methods: post, Handler: s.resendCode},
		{Route: guard.Route{Name: "ForgotPassword", Path: "/auth-forgot", Title: "Forgot Password", Layout: "auth", AuthPage: true}, Methods: post, Handler: s.forgotPassword},
		{Route: guard.Route{Name: "ResetPassword", Path: "/auth-reset", Title: "Reset Password", Layout: "auth", AuthPage: true}, Methods: post, Handler: s.resetPassword},
		{Route: guard.Route{Name: "SignOut", Path: "/auth-logout", Layout: "auth"}, Methods: post, Handler: s.signOut},
		{Route: guard.Route{Name: "Locale", Path: "/locale", Layout: "default"}, Methods: post, Handler: s.setLocale},

		{Route: guard.Route{Name: "home", Path: home, Title: "Home", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.homePage},
		{Route: guard.Route{Name: "progress", Path: "/pages/progress", Title: "Progress", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.remoteProgress},
		{Route: guard.Route{Name: "levelUp", Path: "/pages/level/up", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.levelUp},

		{Route: guard.Route{Name: "grammar", Path: "/pages/grammar", Title: "Grammar", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.grammarPage},
		{Route: guard.Route{Name: "grammarLevel", Path: "/pages/grammar/levels/{levelID:[0-9]+}", Title: "Lessons", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.grammarLevelPage},
		{Route: guard.Route{Name: "grammarLesson", Path: "/pages/grammar/lessons/{lessonID:[0-9]+}", Title: "Lesson", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.grammarLessonPage},
		{Route: guard.Route{Name: "endLesson", Path: "/pages/grammar/lessons/{lessonID:[0-9]+}/end", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.endLesson},

		{Route: guard.Route{Name: "vocabulary", Path: "/pages/vocabulary", Title: "Vocabulary", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.vocabularyPage},
		{Route: guard.Route{Name: "vocabularyWords", Path: "/pages/vocabulary/{categoryID:[0-9]+}", Title: "Words", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.vocabularyWordsPage},
		{Route: guard.Route{Name: "vocabularyLearned", Path: "/pages/vocabulary/{categoryID:[0-9]+}/learned", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.vocabularyLearned},

		{Route: guard.Route{Name: "quiz", Path: "/pages/quiz", Title: "Quiz", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.quizPage},
		{Route: guard.Route{Name: "quizLoad", Path: "/pages/quiz/{kind:grammar|vocabulary}/{id:[0-9]+}", Title: "Quiz", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.quizLoad},
		{Route: guard.Route{Name: "quizStart", Path: "/pages/quiz/start", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.quizStart},
		{Route: guard.Route{Name: "quizAnswer", Path: "/pages/quiz/answer", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.quizAnswer},
		{Route: guard.Route{Name: "quizNext", Path: "/pages/quiz/next", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.quizNext},
		{Route: guard.Route{Name: "quizPrevious", Path: "/pages/quiz/previous", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.quizPrevious},
		{Route: guard.Route{Name: "quizSubmit", Path: "/pages/quiz/submit", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.quizSubmit},
		{Route: guard.Route{Name: "quizResult", Path: "/pages/quiz/result/{topicID:[0-9]+}", Title: "Quiz Result", Layout: "admin", RequiresAuth: true}, Methods: get, Handler: s.quizResult},

		{Route: guard.Route{Name: "adminLevels", Path: "/pages/admin/levels", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.adminAddLevel},
		{Route: guard.Route{Name: "adminLessons", Path: "/pages/admin/lessons", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.adminAddLessons},
		{Route: guard.Route{Name: "adminCategories", Path: "/pages/admin/categories", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.adminAddCategories},
		{Route: guard.Route{Name: "adminWords", Path: "/pages/admin/categories/{categoryID:[0-9]+}/words", Layout: "admin", RequiresAuth: true}, Methods: post, Handler: s.adminAddWords},
	}
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("health")

	media := http.StripPrefix("/media/", http.FileServer(http.Dir(s.app.Config.Media.Dir)))
	s.router.PathPrefix("/media/").Handler(media).Methods(http.MethodGet).Name("media")

	pages := s.router.NewRoute().Subrouter()
	pages.Use(s.guardMiddleware)
	for _, p := range s.pages() {
		s.routes[p.Name] = p.Route
		pages.HandleFunc(p.Path, p.Handler).Methods(p.Methods...).Name(p.Name)
	}

	notFound := guard.Route{Name: "PagesNotFound", Path: "/pages/{rest:.*}", Title: "Not Found", Layout: "admin", RequiresAuth: true}
	s.routes[notFound.Name] = notFound
	pages.HandleFunc(notFound.Path, func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Page not found")
	}).Name(notFound.Name)
}
