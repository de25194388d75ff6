package typesig

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ErrSyntax is wrapped by every *SyntaxError
var ErrSyntax = errors.New("invalid type signature")

// SyntaxError reports a character the scanner cannot tokenize
type SyntaxError struct {
	// Input is the full signature being scanned
	Input string

	// Offset is the byte offset of the offending character
	Offset int

	// Msg describes the problem
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s %q at offset %d: %s", ErrSyntax, e.Input, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Token is the kind of a lexical token
type Token int

const (
	NoToken Token = iota
	StarToken
	AmpersandToken
	LessThanToken
	GreaterThanToken
	ColonToken
	CommaToken
	OpenParenToken
	CloseParenToken
	SquareBeginToken
	SquareEndToken
	IdentifierToken
	ConstToken
)

var tokenNames = map[Token]string{
	NoToken:          "end of input",
	StarToken:        "'*'",
	AmpersandToken:   "'&'",
	LessThanToken:    "'<'",
	GreaterThanToken: "'>'",
	ColonToken:       "'::'",
	CommaToken:       "','",
	OpenParenToken:   "'('",
	CloseParenToken:  "')'",
	SquareBeginToken: "'['",
	SquareEndToken:   "']'",
	IdentifierToken:  "identifier",
	ConstToken:       "const",
}

func (t Token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Scanner splits a type signature into tokens, skipping whitespace
type Scanner struct {
	input string
	pos   int

	// start and end delimit the text of the last token
	start int
	end   int
}

// NewScanner creates a scanner over input
func NewScanner(input string) *Scanner {
	return &Scanner{input: input}
}

// Next returns the next token. At end of input it returns NoToken.
func (s *Scanner) Next() (Token, error) {
	for s.pos < len(s.input) {
		r, size := utf8.DecodeRuneInString(s.input[s.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		s.pos += size
	}

	s.start = s.pos
	if s.pos >= len(s.input) {
		s.end = s.pos
		return NoToken, nil
	}

	r, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.pos += size

	var tok Token
	switch r {
	case '*':
		tok = StarToken
	case '&':
		tok = AmpersandToken
	case '<':
		tok = LessThanToken
	case '>':
		tok = GreaterThanToken
	case ',':
		tok = CommaToken
	case '(':
		tok = OpenParenToken
	case ')':
		tok = CloseParenToken
	case '[':
		tok = SquareBeginToken
	case ']':
		tok = SquareEndToken
	case ':':
		if s.pos >= len(s.input) || s.input[s.pos] != ':' {
			return NoToken, &SyntaxError{Input: s.input, Offset: s.start, Msg: "expected '::'"}
		}
		s.pos++
		tok = ColonToken
	default:
		if r == utf8.RuneError && size == 1 {
			return NoToken, &SyntaxError{Input: s.input, Offset: s.start, Msg: "invalid UTF-8"}
		}
		if !isIdentRune(r) {
			return NoToken, &SyntaxError{Input: s.input, Offset: s.start, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
		for s.pos < len(s.input) {
			r, size := utf8.DecodeRuneInString(s.input[s.pos:])
			if !isIdentRune(r) {
				break
			}
			s.pos += size
		}
		tok = IdentifierToken
		if s.input[s.start:s.pos] == "const" {
			tok = ConstToken
		}
	}

	s.end = s.pos
	return tok, nil
}

// Text returns the source text of the last token
func (s *Scanner) Text() string {
	return s.input[s.start:s.end]
}

// Offset returns the byte offset of the last token
func (s *Scanner) Offset() int {
	return s.start
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
