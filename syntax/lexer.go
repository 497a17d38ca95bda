package syntax

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/unparalleled-js/solidity/report"
)

// Lexer is responsible for tokenizing a source unit.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int

	// doc accumulates documentation comments until the next token
	doc strings.Builder

	// License is the SPDX license identifier found in any comment.
	License string
}

// NewLexer creates a new lexer for the given source reader.
func NewLexer(file *bufio.Reader) *Lexer {
	return &Lexer{
		file:    file,
		tokBuff: &strings.Builder{},
	}
}

// NextToken retrieves the next token from the input.  If the input has ended,
// this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	tok, err := l.nextToken()
	if err != nil {
		return nil, err
	}

	if l.doc.Len() > 0 {
		tok.Doc = l.doc.String()
		l.doc.Reset()
	}

	return tok, nil
}

func (l *Lexer) nextToken() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		}

		switch {
		case c == '\n' || c == '\t' || c == ' ' || c == '\r' || c == '\v' || c == '\f':
			l.skip()
		case c == '/':
			if tok, err := l.lexCommentOrDiv(); tok != nil || err != nil {
				return tok, err
			}
		case c == '"' || c == '\'':
			return l.lexStringLit(c)
		case isDecimalDigit(c):
			return l.lexNumericLit()
		case isFirstIdentChar(c):
			return l.lexIdentOrKeyword()
		default:
			return l.lexPunctOrOper()
		}
	}

	l.mark()
	return l.makeToken(TOK_EOF), nil
}

// RawUntil consumes and returns the raw source text up to (but excluding) the
// given terminator which is consumed as well.  It is used for directives whose
// contents are not tokenized like `pragma`.
func (l *Lexer) RawUntil(term rune) (string, error) {
	l.mark()
	for {
		c, err := l.skip()
		if err != nil {
			return "", err
		}

		switch c {
		case -1:
			return "", report.Raise(l.getSpan(), "expected `%c` not end of file", term)
		case term:
			raw := l.tokBuff.String()
			l.tokBuff.Reset()
			return strings.TrimSpace(raw), nil
		default:
			l.tokBuff.WriteRune(c)
		}
	}
}

// -----------------------------------------------------------------------------

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	kind := TOK_IDENT
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	}

	return l.makeToken(kind), nil
}

// lexNumericLit lexes a numeric literal.  Numbers are never interpreted so
// the lexer only needs to find where they end.
func (l *Lexer) lexNumericLit() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 || !(isHexDigit(c) || c == 'x' || c == 'X' || c == '_' || c == '.') {
			break
		}

		l.eat()
	}

	return l.makeToken(TOK_NUMLIT), nil
}

// lexStringLit lexes a single or double quoted string literal.
func (l *Lexer) lexStringLit(quote rune) (*Token, error) {
	l.mark()
	l.skip()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case -1:
			return nil, report.Raise(l.getSpan(), "unclosed string literal")
		case quote:
			l.skip()
			return l.makeToken(TOK_STRINGLIT), nil
		case '\\':
			l.eat()
			if c, err = l.eat(); err != nil {
				return nil, err
			} else if c == -1 {
				return nil, report.Raise(l.getSpan(), "expected escape sequence not end of file")
			}
		case '\n':
			return nil, report.Raise(l.getSpan(), "string literal cannot contain a newline")
		default:
			l.eat()
		}
	}
}

// lexPunctOrOper lexes a punctuation or operator symbol.
func (l *Lexer) lexPunctOrOper() (*Token, error) {
	l.mark()
	c, _ := l.eat()

	if kind, ok := symbolPatterns[string(c)]; ok && !strings.ContainsRune(operatorRunes, c) {
		return l.makeToken(kind), nil
	}

	if !strings.ContainsRune(operatorRunes, c) {
		return nil, report.Raise(l.getSpan(), "unknown rune `%c`", c)
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 || !strings.ContainsRune(operatorRunes, c) {
			break
		}

		l.eat()
	}

	if kind, ok := symbolPatterns[l.tokBuff.String()]; ok {
		return l.makeToken(kind), nil
	}

	return l.makeToken(TOK_OPER), nil
}

// lexCommentOrDiv lexes a comment or a division operator.  Documentation
// comments are stored to be attached to the next token.
func (l *Lexer) lexCommentOrDiv() (*Token, error) {
	l.mark()
	l.skip()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	switch c {
	case '/':
		l.skip()

		var text strings.Builder
		for {
			c, err = l.skip()
			if err != nil {
				return nil, err
			} else if c == '\n' || c == -1 {
				break
			}

			text.WriteRune(c)
		}

		l.handleComment(text.String(), true)
	case '*':
		l.skip()

		var text strings.Builder
		for {
			c, err = l.skip()
			if err != nil {
				return nil, err
			} else if c == -1 {
				return nil, report.Raise(l.getSpan(), "unclosed block comment")
			}

			if c == '*' {
				next, err := l.peek()
				if err != nil {
					return nil, err
				} else if next == '/' {
					l.skip()
					break
				}
			}

			text.WriteRune(c)
		}

		l.handleComment(text.String(), false)
	default:
		l.tokBuff.WriteRune('/')
		for {
			c, err := l.peek()
			if err != nil {
				return nil, err
			} else if c == -1 || !strings.ContainsRune(operatorRunes, c) {
				break
			}

			l.eat()
		}

		return l.makeToken(TOK_OPER), nil
	}

	return nil, nil
}

// handleComment records doc comments (`///` and `/** */`) and license
// identifiers.  text excludes the leading `//` or `/*`.
func (l *Lexer) handleComment(text string, lineComment bool) {
	if i := strings.Index(text, "SPDX-License-Identifier:"); i >= 0 {
		fields := strings.Fields(text[i+len("SPDX-License-Identifier:"):])
		if len(fields) > 0 {
			l.License = fields[0]
		}
	}

	isDoc := false
	if lineComment && strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "//") {
		isDoc, text = true, text[1:]
	} else if !lineComment && strings.HasPrefix(text, "*") && text != "*" {
		isDoc, text = true, text[1:]
	}

	if !isDoc {
		return
	}

	if l.doc.Len() > 0 {
		l.doc.WriteRune('\n')
	}
	l.doc.WriteString(strings.TrimSpace(text))
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start line and column to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Span:  l.getSpan(),
	}
}

// getSpan calculates a text span based on the lexer's current state.
func (l *Lexer) getSpan() *report.TextSpan {
	endCol := l.col - 1
	if endCol < l.startCol && l.line == l.startLine {
		endCol = l.startCol
	}

	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    endCol,
	}
}

// eat moves the lexer forward one rune and writes the rune to the token buffer.
// If the lexer encounters an EOF, -1 is returned as the rune value.
func (l *Lexer) eat() (rune, error) {
	c, err := l.skip()
	if c != -1 && err == nil {
		l.tokBuff.WriteRune(c)
	}

	return c, err
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.
func (l *Lexer) skip() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)
	return c, nil
}

// peek returns the next rune without moving the lexer forward.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if err = l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// updatePos updates the lexer's position based on the rune it just read.
func (l *Lexer) updatePos(c rune) {
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// -----------------------------------------------------------------------------

func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isFirstIdentChar(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c)
}
