package quiz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Question is one generated question with its answers.
type Question struct {
	Text        string    `json:"question"`
	Correct     string    `json:"correct"`
	Incorrect   [3]string `json:"incorrect"`
	Explanation string    `json:"explanation,omitempty"`
}

// Answers returns [correct, wrong1, wrong2, wrong3].
func (q Question) Answers() []string {
	return []string{q.Correct, q.Incorrect[0], q.Incorrect[1], q.Incorrect[2]}
}

// ParseQuestions turns a model reply shaped like a nested list literal into
// questions. Both JSON and Python quoting are accepted, as is a Markdown
// code fence or stray prose (brackets included) around the outer list. The
// first "[[" that parses as a complete list wins. Every group must hold 5
// strings; an optional 6th string is kept as the explanation.
func ParseQuestions(reply string) ([]Question, error) {
	var firstErr error
	for _, start := range listStarts(reply) {
		p := &listParser{s: reply, pos: start}
		groups, err := p.parseOuter()
		if err == nil {
			var qs []Question
			if qs, err = toQuestions(groups); err == nil {
				return qs, nil
			}
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("reply does not contain a list of questions")
	}
	return nil, firstErr
}

func toQuestions(groups [][]string) ([]Question, error) {
	if len(groups) == 0 {
		return nil, errors.New("reply contains no questions")
	}
	out := make([]Question, 0, len(groups))
	for i, g := range groups {
		if len(g) != 5 && len(g) != 6 {
			return nil, fmt.Errorf("question %d has %d fields, want 5", i+1, len(g))
		}
		for j := range g {
			g[j] = strings.TrimSpace(g[j])
		}
		for j := 0; j < 5; j++ {
			if g[j] == "" {
				return nil, fmt.Errorf("question %d has an empty field at position %d", i+1, j+1)
			}
		}
		q := Question{Text: g[0], Correct: g[1], Incorrect: [3]string{g[2], g[3], g[4]}}
		if len(g) == 6 {
			q.Explanation = g[5]
		}
		out = append(out, q)
	}
	return out, nil
}

// listStarts returns the offsets of every '[' whose next non-space byte is
// another '[', or ']' for an empty list.
func listStarts(reply string) []int {
	var starts []int
	for i := 0; i < len(reply); i++ {
		if reply[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(reply) && strings.IndexByte(" \t\r\n", reply[j]) >= 0 {
			j++
		}
		if j < len(reply) && (reply[j] == '[' || reply[j] == ']') {
			starts = append(starts, i)
		}
	}
	return starts
}

type listParser struct {
	s   string
	pos int
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *listParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *listParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *listParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *listParser) parseOuter() ([][]string, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	var groups [][]string
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			break
		}
		g, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' after question group")
		}
	}
	return groups, nil
}

func (p *listParser) parseGroup() ([]string, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	var fields []string
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return fields, nil
		}
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		fields = append(fields, s)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' after string")
		}
	}
}

func (p *listParser) parseString() (string, error) {
	quote := p.peek()
	if quote != '"' && quote != '\'' {
		return "", p.errorf("expected quoted string")
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.parseEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *listParser) parseEscape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.s) {
		return p.errorf("dangling escape")
	}
	c := p.s[p.pos]
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'u':
		r, err := p.hexRune()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(p.s[p.pos:], `\u`) {
			save := p.pos
			p.pos += 2
			lo, err := p.hexRune()
			if err == nil {
				if dec := utf16.DecodeRune(r, lo); dec != utf8.RuneError {
					b.WriteRune(dec)
					return nil
				}
			}
			p.pos = save
		}
		b.WriteRune(r)
	default:
		// \\ \" \' \/ and anything unknown keep the escaped byte
		b.WriteByte(c)
	}
	return nil
}

func (p *listParser) hexRune() (rune, error) {
	if p.pos+4 > len(p.s) {
		return 0, p.errorf("short unicode escape")
	}
	v, err := strconv.ParseUint(p.s[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errorf("bad unicode escape")
	}
	p.pos += 4
	return rune(v), nil
}
