package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"modlink/internal/source"
)

type lexError struct {
	span source.Span
	msg  string
}

// splitLines tokenizes f and groups tokens into logical lines.
// Comments are dropped; newlines inside (), [] and {} do not end a line.
func splitLines(f *source.File) ([]line, []lexError) {
	c := newCursor(f)
	var (
		out     []line
		errs    []lexError
		cur     line
		depth   int
		atStart = true
		col     int
	)
	flush := func() {
		if len(cur.toks) > 0 {
			cur.span = cover(cur.toks)
			out = append(out, cur)
		}
		cur = line{}
	}
	for !c.eof() {
		ch := c.peek()
		switch {
		case ch == '\n':
			c.bump()
			if depth == 0 {
				flush()
				atStart, col = true, 0
			}
			continue
		case ch == ' ' || ch == '\t' || ch == '\r':
			c.bump()
			if atStart {
				col++
			}
			continue
		case ch == '\\' && c.peekAt(1) == '\n':
			c.bump()
			c.bump()
			continue
		case ch == '#':
			for !c.eof() && c.peek() != '\n' {
				c.bump()
			}
			continue
		}
		if atStart {
			cur.indent = col
			atStart = false
		}
		start := c.off
		switch {
		case ch == '"' || ch == '\'':
			if msg := scanString(&c); msg != "" {
				errs = append(errs, lexError{span: c.span(start), msg: msg})
			}
			cur.toks = append(cur.toks, token{kind: tokString, text: string(f.Content[start:c.off]), span: c.span(start)})
		case ch >= '0' && ch <= '9':
			for !c.eof() && isIdentByte(c.peek()) {
				c.bump()
			}
			cur.toks = append(cur.toks, token{kind: tokNumber, text: string(f.Content[start:c.off]), span: c.span(start)})
		case isIdentStart(&c):
			for !c.eof() && isIdentContinue(&c) {
				_, size := utf8.DecodeRune(f.Content[c.off:])
				c.off += uint32(size)
			}
			// идентификаторы сравниваются в NFC
			text := norm.NFC.String(string(f.Content[start:c.off]))
			cur.toks = append(cur.toks, token{kind: tokIdent, text: text, span: c.span(start)})
		default:
			op := scanOp(&c)
			switch op {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth > 0 {
					depth--
				}
			}
			cur.toks = append(cur.toks, token{kind: tokOp, text: op, span: c.span(start)})
		}
	}
	if depth > 0 {
		errs = append(errs, lexError{span: cover(cur.toks), msg: "unclosed bracket"})
	}
	flush()
	return out, errs
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isIdentStart(c *cursor) bool {
	b := c.peek()
	if b < utf8.RuneSelf {
		return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
	}
	r, _ := utf8.DecodeRune(c.file.Content[c.off:])
	return unicode.IsLetter(r)
}

func isIdentContinue(c *cursor) bool {
	b := c.peek()
	if b < utf8.RuneSelf {
		return isIdentByte(b)
	}
	r, _ := utf8.DecodeRune(c.file.Content[c.off:])
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// scanString consumes a single- or triple-quoted string and returns an
// error message if it is unterminated.
func scanString(c *cursor) string {
	q := c.bump()
	if c.peek() == q && c.peekAt(1) == q {
		c.bump()
		c.bump()
		for !c.eof() {
			if c.peek() == '\\' {
				c.bump()
				c.bump()
				continue
			}
			if c.peek() == q && c.peekAt(1) == q && c.peekAt(2) == q {
				c.off += 3
				return ""
			}
			c.bump()
		}
		return "unterminated string"
	}
	for !c.eof() {
		b := c.bump()
		switch b {
		case '\\':
			c.bump()
		case q:
			return ""
		case '\n':
			c.off--
			return "unterminated string"
		}
	}
	return "unterminated string"
}

func scanOp(c *cursor) string {
	rest := c.file.Content[c.off:]
	for _, op := range multiOps {
		if len(rest) >= len(op) && string(rest[:len(op)]) == op {
			c.off += uint32(len(op))
			return op
		}
	}
	r, size := utf8.DecodeRune(rest)
	c.off += uint32(size)
	if r == utf8.RuneError {
		return fmt.Sprintf("\\x%02x", rest[0])
	}
	return string(r)
}
