package batch

import (
	"regexp"
	"strconv"
	"strings"
)

// Request is one line of a pasted card list.
type Request struct {
	Quantity int
	Name     string
}

// Label renders the request for display, with a "Nx " prefix only when
// more than one copy was asked for.
func (r Request) Label() string {
	if r.Quantity > 1 {
		return strconv.Itoa(r.Quantity) + "x " + r.Name
	}
	return r.Name
}

var lineRegex = regexp.MustCompile(`(?i)^(\d+)x?\s+(.+)$`)

// Parse reads one request per non-blank line. "4 Opt" and "4x Opt" ask for
// four copies; any other line asks for one copy of the whole line. Lines
// asking for zero copies are skipped.
func Parse(text string) []Request {
	var reqs []Request
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := lineRegex.FindStringSubmatch(line); m != nil {
			if q, err := strconv.Atoi(m[1]); err == nil {
				if q > 0 {
					reqs = append(reqs, Request{Quantity: q, Name: strings.TrimSpace(m[2])})
				}
				continue
			}
		}
		reqs = append(reqs, Request{Quantity: 1, Name: line})
	}
	return reqs
}

// Total returns the sum of requested quantities.
func Total(reqs []Request) int {
	n := 0
	for _, r := range reqs {
		n += r.Quantity
	}
	return n
}
