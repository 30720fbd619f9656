// Package pattern compiles path patterns into match functions.
//
// Patterns use the standard path-parameter syntax: ":name" segments
// capture a single path segment into the params map, and a "*" segment
// captures the remainder of the path under the "*" key. Compiled
// matchers are cached per pattern string by Cache, which is owned by a
// single router instance.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// SplatKey is the params key under which a trailing wildcard segment
// stores the remainder of the matched path.
const SplatKey = "*"

// Match is the result of applying a compiled pattern to a pathname.
type Match struct {
	// Path is the pathname that matched.
	Path string
	// Params holds the extracted path parameters, nil when the
	// pattern declares none.
	Params map[string]string
}

// MatchFunc applies a compiled pattern to a decoded pathname.
type MatchFunc func(path string) (*Match, bool)

// compiled pairs a regex with the parameter names of its capture
// groups, in group order.
type compiled struct {
	re    *regexp.Regexp
	names []string
}

// Compile compiles a path pattern into a MatchFunc.
func Compile(pat string) (MatchFunc, error) {
	if pat == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	var b strings.Builder
	b.WriteString("^")

	var names []string
	var splatSeen bool
	segments := strings.Split(strings.Trim(pat, "/"), "/")

	for i, seg := range segments {
		switch {
		case seg == "":
			// Root pattern "/" produces a single empty segment.
			continue
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return nil, fmt.Errorf("pattern %q: parameter segment missing name", pat)
			}
			names = append(names, name)
			b.WriteString("/([^/]+)")
		case seg == SplatKey && splatSeen:
			// All splat captures share one params key, so a second
			// splat would overwrite the first.
			return nil, fmt.Errorf("pattern %q: multiple wildcard segments", pat)
		case seg == SplatKey && i == len(segments)-1:
			// Trailing splat swallows the rest of the path,
			// including nothing at all.
			splatSeen = true
			names = append(names, SplatKey)
			b.WriteString("(?:/(.*))?")
		case seg == SplatKey:
			splatSeen = true
			names = append(names, SplatKey)
			b.WriteString("/([^/]+)")
		default:
			b.WriteString("/")
			b.WriteString(regexp.QuoteMeta(seg))
		}
	}

	b.WriteString("/?$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pat, err)
	}

	c := &compiled{re: re, names: names}
	return c.match, nil
}

// match applies the compiled pattern to a decoded pathname.
func (c *compiled) match(path string) (*Match, bool) {
	if path == "" {
		path = "/"
	}

	groups := c.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	m := &Match{Path: path}
	if len(c.names) > 0 {
		m.Params = make(map[string]string, len(c.names))
		for i, name := range c.names {
			if i+1 < len(groups) {
				m.Params[name] = groups[i+1]
			}
		}
	}

	return m, true
}
