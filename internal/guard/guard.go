// Package guard decides, before each navigation, whether the target route
// may be shown for the current session.
package guard

import (
	"log"
	"net/url"
)

// Route is the metadata the guard reads from a route table entry.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	Title        string
	Layout       string
	// AuthPage marks sign-in style pages a signed-in user is sent away from.
	AuthPage bool
}

type Action int

const (
	Allow Action = iota
	Redirect
)

type Decision struct {
	Action   Action
	Location string
}

func (d Decision) Allowed() bool { return d.Action == Allow }

// Session is the part of the session store the guard needs.
type Session interface {
	IsAuthenticated() bool
	HasStoredToken() bool
	TokenValid() bool
	Restore() bool
	SignOut()
}

type Guard struct {
	session   Session
	loginPath string
	homePath  string
}

func New(session Session, loginPath, homePath string) *Guard {
	return &Guard{session: session, loginPath: loginPath, homePath: homePath}
}

// Check evaluates navigation to route with the requested full path (path
// plus query). A session that exists only in storage is restored first; an
// expired token signs the session out.
func (g *Guard) Check(to Route, fullPath string) Decision {
	switch {
	case !g.session.IsAuthenticated() && g.session.HasStoredToken():
		if !g.session.Restore() {
			log.Printf("[guard] stored token is expired or unreadable, signing out")
			g.session.SignOut()
		}
	case g.session.IsAuthenticated() && !g.session.TokenValid():
		log.Printf("[guard] access token expired, signing out")
		g.session.SignOut()
	}

	authenticated := g.session.IsAuthenticated()
	if to.RequiresAuth && !authenticated {
		return Decision{Action: Redirect, Location: g.SignInURL(fullPath)}
	}
	if authenticated && to.AuthPage {
		return Decision{Action: Redirect, Location: g.homePath}
	}
	return Decision{Action: Allow}
}

// SignInURL returns the sign-in location that returns to next afterwards.
func (g *Guard) SignInURL(next string) string {
	if next == "" {
		return g.loginPath
	}
	return g.loginPath + "?next=" + url.QueryEscape(next)
}
