// Package app builds the client's object graph once per instance.
package app

import (
	"fmt"
	"log"

	"lingo-client/internal/api"
	"lingo-client/internal/config"
	"lingo-client/internal/grammar"
	"lingo-client/internal/guard"
	"lingo-client/internal/quiz"
	"lingo-client/internal/session"
	"lingo-client/internal/storage"
	"lingo-client/internal/vocabulary"
)

type App struct {
	Config     *config.Config
	Storage    storage.Storage
	Navigator  *guard.Navigator
	Session    *session.Store
	Guard      *guard.Guard
	Gateway    *api.Gateway
	Grammar    *grammar.Store
	Vocabulary *vocabulary.Store
	Quiz       *quiz.Store
}

type options struct {
	storage     storage.Storage
	gatewayOpts []api.GatewayOption
	sessionOpts []session.Option
	quizOpts    []quiz.Option
}

type Option func(*options)

// WithStorage uses st instead of opening the configured backend.
func WithStorage(st storage.Storage) Option {
	return func(o *options) { o.storage = st }
}

func WithGatewayOptions(opts ...api.GatewayOption) Option {
	return func(o *options) { o.gatewayOpts = append(o.gatewayOpts, opts...) }
}

func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) { o.sessionOpts = append(o.sessionOpts, opts...) }
}

func WithQuizOptions(opts ...quiz.Option) Option {
	return func(o *options) { o.quizOpts = append(o.quizOpts, opts...) }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	st := o.storage
	if st == nil {
		var err error
		st, err = storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
	}

	a := &App{Config: cfg, Storage: st}
	a.Navigator = guard.NewNavigator(cfg.Server.LoginPath)
	a.Session = session.New(st, o.sessionOpts...)
	a.Guard = guard.New(a.Session, cfg.Server.LoginPath, cfg.Server.HomePath)

	a.Gateway = api.NewGateway(api.GatewayConfig{
		BaseURL:       cfg.API.BaseURL,
		PublicBaseURL: cfg.API.PublicBaseURL,
		Locale:        cfg.API.Locale,
		AuthTimeout:   cfg.API.AuthTimeout,
		PublicTimeout: cfg.API.PublicTimeout,
	}, st, o.gatewayOpts...)
	a.Gateway.OnAuthFailure(api.AuthFailureFunc(a.handleAuthFailure))

	a.Grammar = grammar.New(a.Gateway.Grammar(), a.Gateway.PublicGrammar(), a.Session,
		grammar.WithGuestUserID(cfg.API.GuestUserID))
	a.Vocabulary = vocabulary.New(a.Gateway.Vocabulary(), a.Gateway.PublicVocabulary())
	a.Quiz = quiz.New(a.Gateway.Quiz(), a.Gateway.PublicQuiz(), a.Session,
		append([]quiz.Option{quiz.WithGuestUserID(cfg.API.GuestUserID)}, o.quizOpts...)...)

	a.Session.OnSignOut(a.Grammar.ClearUserData)
	a.Session.OnSignOut(a.Quiz.Reset)

	return a, nil
}

// handleAuthFailure tears the session down and sends the learner to the
// sign-in page unless they are already on it.
func (a *App) handleAuthFailure() {
	a.Session.SignOut()
	if a.Navigator.ForceSignIn() {
		log.Printf("[app] session expired, redirecting to %s", a.Config.Server.LoginPath)
	}
}

// SetLocale stores the language sent with requests built from now on.
func (a *App) SetLocale(locale string) error {
	return a.Storage.Set(storage.KeyLocale, locale)
}

// Locale returns the stored locale, or the configured default.
func (a *App) Locale() string {
	if locale, ok := a.Storage.Get(storage.KeyLocale); ok && locale != "" {
		return locale
	}
	return a.Config.API.Locale
}

func (a *App) Close() error {
	return a.Storage.Close()
}
