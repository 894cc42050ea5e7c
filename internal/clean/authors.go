// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformed is matched by every *ParseError.
var ErrMalformed = errors.New("malformed record")

// ParseError reports a record field that could not be parsed.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: parsing %s %q: %v", e.Row, e.Field, truncate(e.Value, 60), e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrMalformed, e.Err} }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ParseAuthors decodes a serialized author list. Both JSON arrays and Python
// list literals of strings are accepted, e.g. ["A. B", "C. D"] or
// ['A. B', "C. D"].
func ParseAuthors(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty author list")
	}

	var authors []string
	if err := json.Unmarshal([]byte(s), &authors); err == nil {
		if authors == nil {
			return nil, errors.New("author list is null")
		}
		return authors, nil
	}
	return parsePyList(s)
}

// parsePyList parses a Python list of string literals.
func parsePyList(s string) ([]string, error) {
	p := &listParser{src: s}
	return p.parse()
}

type listParser struct {
	src string
	pos int
}

func (p *listParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *listParser) parse() ([]string, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return nil, p.errorf("expected '['")
	}
	p.pos++

	items := []string{}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated list")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			break
		}

		item, err := p.str()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated list")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data after list")
	}
	return items, nil
}

// str reads one quoted string literal, with adjacent literals concatenated.
func (p *listParser) str() (string, error) {
	var b strings.Builder
	read := false
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || (p.src[p.pos] != '\'' && p.src[p.pos] != '"') {
			break
		}
		if err := p.quoted(&b); err != nil {
			return "", err
		}
		read = true
	}
	if !read {
		return "", p.errorf("expected string literal")
	}
	return b.String(), nil
}

func (p *listParser) quoted(b *strings.Builder) error {
	quote := p.src[p.pos]
	p.pos++
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return nil
		case c == '\n':
			return p.errorf("newline in string literal")
		case c == '\\':
			if err := p.escape(b); err != nil {
				return err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return p.errorf("unterminated string literal")
}

func (p *listParser) escape(b *strings.Builder) error {
	p.pos++
	if p.pos >= len(p.src) {
		return p.errorf("dangling escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '\n':
	case 'x':
		return p.hexRune(b, 2)
	case 'u':
		return p.hexRune(b, 4)
	case 'U':
		return p.hexRune(b, 8)
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *listParser) hexRune(b *strings.Builder, n int) error {
	if p.pos+n > len(p.src) {
		return p.errorf("truncated escape")
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return p.errorf("invalid escape: %v", err)
	}
	p.pos += n
	b.WriteRune(rune(v))
	return nil
}
