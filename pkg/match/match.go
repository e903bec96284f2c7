// Package match provides the pattern matchers used to select files and dependencies.
//
// Two flavors exist:
//   - globs select files by virtual path. A glob is anchored on the whole path,
//     "*" matches any run of characters (path separators included), "?"
//     matches exactly one character, "[a-z]" a character class and "{a,b}"
//     any of the alternatives.
//   - regular expressions select dependencies by version id or dependency name.
//     They are not anchored: a match anywhere in the candidate is a match.
package match

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher tells if a candidate string matches some pattern
type Matcher interface {
	Match(string) bool
	String() string
}

// List of matchers
type List []Matcher

// Any returns true if at least one matcher in the list matches the candidate
func (l List) Any(candidate string) bool {
	for _, m := range l {
		if m.Match(candidate) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns of the list
func (l List) Patterns() []string {
	res := make([]string, 0, len(l))
	for _, m := range l {
		res = append(res, m.String())
	}
	return res
}

type globMatcher struct {
	pattern string
	g       glob.Glob
}

func (m globMatcher) Match(candidate string) bool {
	return m.g.Match(candidate)
}

func (m globMatcher) String() string {
	return m.pattern
}

type regexpMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func (m regexpMatcher) Match(candidate string) bool {
	return m.re.MatchString(candidate)
}

func (m regexpMatcher) String() string {
	return m.pattern
}

// Glob compiles a glob pattern.
//
// No separator is declared, so "*" matches across path segments.
func Glob(pattern string) (Matcher, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return globMatcher{pattern: pattern, g: g}, nil
}

// Regexp compiles an unanchored regular expression
func Regexp(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return regexpMatcher{pattern: pattern, re: re}, nil
}

// Globs compiles a list of glob patterns
func Globs(patterns []string) (List, error) {
	return compileAll(patterns, Glob)
}

// Regexps compiles a list of regular expressions
func Regexps(patterns []string) (List, error) {
	return compileAll(patterns, Regexp)
}

// HasMeta reports whether a pattern contains glob metacharacters
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func compileAll(patterns []string, compile func(string) (Matcher, error)) (List, error) {
	res := make(List, 0, len(patterns))
	for _, p := range patterns {
		m, err := compile(p)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, nil
}
