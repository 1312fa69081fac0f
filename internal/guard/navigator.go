package guard

import (
	"strings"
	"sync"
)

// Navigator tracks where the learner currently is and holds a redirect that
// code outside a request (the gateway's 401 handler) wants applied on the
// next navigation.
type Navigator struct {
	loginPath string

	mu      sync.Mutex
	current string
	pending string
}

func NewNavigator(loginPath string) *Navigator {
	return &Navigator{loginPath: loginPath}
}

// Visit records path as the current location.
func (n *Navigator) Visit(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// ForceSignIn schedules a redirect to the sign-in page. It does nothing and
// returns false when the learner is already there.
func (n *Navigator) ForceSignIn() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if onPath(n.current, n.loginPath) {
		return false
	}
	n.pending = n.loginPath
	return true
}

// TakePending returns and clears the scheduled redirect.
func (n *Navigator) TakePending() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	location := n.pending
	n.pending = ""
	return location, location != ""
}

func onPath(location, path string) bool {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	return location == path
}
