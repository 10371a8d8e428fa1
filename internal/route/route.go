// Package route parses configured route lists into directed route descriptors.
package route

import (
	"fmt"
	"strings"
)

// Spec is a single parsed route token before expansion.
type Spec struct {
	Origin        string
	Destination   string
	Bidirectional bool
}

// Descriptor is one directed origin/destination pair to poll.
type Descriptor struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// ParseError describes a route token that could not be parsed.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid route %q: %s", e.Token, e.Reason)
}

// Expand turns a spec into its directed descriptors. A bidirectional spec
// yields the forward direction first, then the reverse.
func (s Spec) Expand() []Descriptor {
	out := []Descriptor{{Origin: s.Origin, Destination: s.Destination}}
	if s.Bidirectional {
		out = append(out, Descriptor{Origin: s.Destination, Destination: s.Origin})
	}
	return out
}

// ParseToken parses one route token of the form "A->B" or "A<->B".
func ParseToken(token string) (Spec, error) {
	var spec Spec
	switch {
	case strings.Contains(token, "<->"):
		parts := strings.SplitN(token, "<->", 2)
		spec = Spec{
			Origin:        strings.TrimSpace(parts[0]),
			Destination:   strings.TrimSpace(parts[1]),
			Bidirectional: true,
		}
	case strings.Contains(token, "->"):
		parts := strings.SplitN(token, "->", 2)
		spec = Spec{
			Origin:      strings.TrimSpace(parts[0]),
			Destination: strings.TrimSpace(parts[1]),
		}
	default:
		return Spec{}, &ParseError{Token: token, Reason: "missing '->' separator"}
	}
	if spec.Origin == "" || spec.Destination == "" {
		return Spec{}, &ParseError{Token: token, Reason: "empty station name"}
	}
	return spec, nil
}

// ParseList parses a semicolon separated route list into directed
// descriptors. Invalid tokens are reported and skipped so one bad entry
// does not take down the rest of the list. Empty tokens, such as those
// left by a trailing semicolon, are ignored.
func ParseList(list string) ([]Descriptor, []error) {
	var (
		descriptors []Descriptor
		errs        []error
	)
	for _, token := range strings.Split(list, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		spec, err := ParseToken(token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, spec.Expand()...)
	}
	return descriptors, errs
}
