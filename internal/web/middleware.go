package web

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// guardMiddleware applies a redirect left by the gateway's 401 handler, then
// runs the navigation guard for the matched route.
func (s *Server) guardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := mux.CurrentRoute(r)
		if current == nil {
			next.ServeHTTP(w, r)
			return
		}
		route, ok := s.routes[current.GetName()]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		nav := s.app.Navigator
		if location, ok := nav.TakePending(); ok && r.URL.Path != location {
			log.Printf("[web] %s: forced redirect to %s", r.URL.Path, location)
			http.Redirect(w, r, location, http.StatusSeeOther)
			return
		}

		decision := s.app.Guard.Check(route, r.URL.RequestURI())
		if !decision.Allowed() {
			log.Printf("[web] %s: redirecting to %s", r.URL.Path, decision.Location)
			http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			return
		}

		nav.Visit(r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}
