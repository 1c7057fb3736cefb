// Package command carries discrete operator commands from input contexts to
// the control loop.
package command

import (
	"fmt"
	"strings"
)

type Token int

const (
	Scan Token = iota + 1
	Home
	Track
	Quit
)

var names = map[Token]string{
	Scan:  "scan",
	Home:  "home",
	Track: "track",
	Quit:  "quit",
}

// aliases are the single-key bindings of the operator console.
var aliases = map[string]Token{
	"s": Scan,
	"z": Home,
	"t": Track,
	"q": Quit,
}

func (t Token) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Parse maps a word or key alias to a Token. Unknown input reports false.
func Parse(s string) (Token, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if tok, ok := aliases[s]; ok {
		return tok, true
	}
	for tok, n := range names {
		if n == s {
			return tok, true
		}
	}
	return 0, false
}

func (t *Token) UnmarshalText(b []byte) error {
	tok, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("unknown command %q", string(b))
	}
	*t = tok
	return nil
}

func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Source yields the tokens that became due by control time t.
type Source interface {
	Poll(t float64) []Token
}
