package router

import (
	"net/http"

	"github.com/edgefuncs/router/internal/event"
)

// Wildcard is the universal marker matching every method or every
// path, depending on position.
const Wildcard = "*"

// CheckKind tags the outcome of applying a route entry to a request.
type CheckKind uint8

const (
	// CheckNotFound means the path did not match; the route is
	// invisible to this request.
	CheckNotFound CheckKind = iota
	// CheckMatched means path and method both matched.
	CheckMatched
	// CheckMethodMismatch means the path matched but the method is
	// not in the route's method set.
	CheckMethodMismatch
)

// CheckResult is the tagged outcome of a route check, produced fresh
// per request.
type CheckResult struct {
	Kind CheckKind
	// Allowed carries the route's declared methods when Kind is
	// CheckMethodMismatch.
	Allowed []string
}

// checkFunc evaluates a route entry against a request.
type checkFunc func(req *event.Request) (CheckResult, error)

// newCheck builds the predicate for a route entry. Path matching takes
// precedence over method matching: a method mismatch is reported only
// when the path itself matched.
func (rt *Router) newCheck(entry routeEntry) checkFunc {
	universal := entry.pattern == Wildcard || entry.pattern == ""

	return func(req *event.Request) (CheckResult, error) {
		allowed := methodAllowed(entry.methods, req.Method)

		if universal {
			if allowed {
				return CheckResult{Kind: CheckMatched}, nil
			}
			return CheckResult{Kind: CheckMethodMismatch, Allowed: entry.methods}, nil
		}

		fn, err := rt.patterns.Get(entry.pattern)
		if err != nil {
			return CheckResult{}, err
		}

		m, ok := fn(req.Path())
		if !ok {
			return CheckResult{Kind: CheckNotFound}, nil
		}

		// Params are attached as soon as the path matches, even if
		// the method then mismatches.
		if rt.opts.ExtractRequestParameters {
			req.SetParams(m.Params)
		}

		if allowed {
			return CheckResult{Kind: CheckMatched}, nil
		}
		return CheckResult{Kind: CheckMethodMismatch, Allowed: entry.methods}, nil
	}
}

// methodAllowed reports whether a request method is in the route's
// method set. HEAD is implicitly allowed where GET is declared.
func methodAllowed(methods []string, method string) bool {
	for _, m := range methods {
		if m == Wildcard || m == method {
			return true
		}
		if method == http.MethodHead && m == http.MethodGet {
			return true
		}
	}
	return false
}

// mergeAllowed accumulates allowed methods across mismatching routes,
// preserving first-seen order without duplicates.
func mergeAllowed(into, add []string) []string {
	for _, m := range add {
		seen := false
		for _, existing := range into {
			if existing == m {
				seen = true
				break
			}
		}
		if !seen {
			into = append(into, m)
		}
	}
	return into
}
