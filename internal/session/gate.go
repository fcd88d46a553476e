package session

// RouteKind classifies a view for gating.
type RouteKind int

const (
	// RoutePublic is only for signed-out users (sign-in, sign-up).
	RoutePublic RouteKind = iota
	// RoutePrivate requires a signed-in user.
	RoutePrivate
)

// Decision is the outcome of gating a route.
type Decision int

const (
	// DecisionWait means verification is still running; show a loading state.
	DecisionWait Decision = iota
	// DecisionAllow renders the route.
	DecisionAllow
	// DecisionRedirectSignIn sends a signed-out user to sign-in.
	DecisionRedirectSignIn
	// DecisionRedirectDashboard sends a signed-in user away from public pages.
	DecisionRedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectSignIn:
		return "redirect:/signin"
	case DecisionRedirectDashboard:
		return "redirect:/dashboard"
	default:
		return "unknown"
	}
}

// Gate decides what to do with a route given the current state. No
// redirect is issued while loading.
func (s *Session) Gate(kind RouteKind) Decision {
	s.mu.RLock()
	loading, signedIn := s.loading, s.user != nil
	s.mu.RUnlock()

	if loading {
		return DecisionWait
	}
	switch kind {
	case RoutePrivate:
		if !signedIn {
			return DecisionRedirectSignIn
		}
	case RoutePublic:
		if signedIn {
			return DecisionRedirectDashboard
		}
	}
	return DecisionAllow
}
