package egg

import (
	"fmt"
	"strconv"
	"unicode"
)

// Kind is the kind of an atom token.
type Kind int

const (
	StringLiteral Kind = iota
	NumberLiteral
	Identifier
)

func (k Kind) String() string {
	switch k {
	case StringLiteral:
		return "string literal"
	case NumberLiteral:
		return "number literal"
	case Identifier:
		return "identifier"
	default:
		return "unknown token"
	}
}

type position struct {
	line, col int
}

func (p position) String() string {
	return fmt.Sprintf("%d:%d", p.line, p.col)
}

// Tok is a single atom read from Egg source. Punctuation (parentheses and
// commas) is consumed by the parser directly and never becomes a Tok.
type Tok struct {
	kind Kind
	str  string
	num  float64
	position
}

func (tok Tok) String() string {
	switch tok.kind {
	case StringLiteral:
		return fmt.Sprintf("%s \"%s\" [%s]", tok.kind, tok.str, tok.position)
	case NumberLiteral:
		return fmt.Sprintf("%s %s [%s]", tok.kind, nToS(tok.num), tok.position)
	default:
		return fmt.Sprintf("%s '%s' [%s]", tok.kind, tok.str, tok.position)
	}
}

// scanner walks Egg source one rune at a time, tracking line and column.
type scanner struct {
	source []rune
	idx    int
	position
}

func newScanner(source string) *scanner {
	return &scanner{
		source:   []rune(source),
		position: position{1, 1},
	}
}

func (s *scanner) done() bool {
	return s.idx >= len(s.source)
}

func (s *scanner) peek() (rune, bool) {
	if s.done() {
		return 0, false
	}
	return s.source[s.idx], true
}

func (s *scanner) next() rune {
	r := s.source[s.idx]
	s.idx++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

// skipSpace advances past whitespace only. '#' is not a comment marker.
func (s *scanner) skipSpace() {
	for !s.done() && unicode.IsSpace(s.source[s.idx]) {
		s.next()
	}
}

// rest returns a short excerpt of the unread input for error messages.
func (s *scanner) rest() string {
	const excerptLen = 20
	end := s.idx + excerptLen
	if end >= len(s.source) {
		return string(s.source[s.idx:])
	}
	return string(s.source[s.idx:end]) + ".."
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isWordChar(r rune) bool {
	return isDigit(r) || r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentifierChar(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}

	switch r {
	case '(', ')', ',', '#', '"':
		return false
	default:
		return true
	}
}

// scanAtom reads one string, number or identifier token, tried in that
// order, so identifiers can never begin with a digit.
func (s *scanner) scanAtom() (Tok, error) {
	start := s.position
	r, ok := s.peek()
	if !ok {
		return Tok{}, Err{
			ErrSyntax,
			fmt.Sprintf("unexpected end of input at %s", start),
			ErrUnexpectedEnd,
		}
	}

	switch {
	case r == '"':
		s.next()
		begin := s.idx
		for {
			c, ok := s.peek()
			if !ok {
				return Tok{}, Err{
					ErrSyntax,
					fmt.Sprintf("unterminated string literal starting at %s", start),
					ErrUnexpectedEnd,
				}
			}
			if c == '"' {
				break
			}
			s.next()
		}
		str := string(s.source[begin:s.idx])
		s.next() // closing quote
		return Tok{kind: StringLiteral, str: str, position: start}, nil

	case isDigit(r):
		begin := s.idx
		for !s.done() && isDigit(s.source[s.idx]) {
			s.next()
		}
		if c, ok := s.peek(); ok && isWordChar(c) {
			for !s.done() && isIdentifierChar(s.source[s.idx]) {
				s.next()
			}
			return Tok{}, Err{
				ErrSyntax,
				fmt.Sprintf("malformed number %s at %s",
					string(s.source[begin:s.idx]), start),
				nil,
			}
		}

		lit := string(s.source[begin:s.idx])
		// a digit run can only fail to parse by overflowing, which
		// yields +Inf
		f, _ := strconv.ParseFloat(lit, 64)
		return Tok{kind: NumberLiteral, str: lit, num: f, position: start}, nil

	case isIdentifierChar(r):
		begin := s.idx
		for !s.done() && isIdentifierChar(s.source[s.idx]) {
			s.next()
		}
		return Tok{
			kind:     Identifier,
			str:      string(s.source[begin:s.idx]),
			position: start,
		}, nil

	default:
		return Tok{}, Err{
			ErrSyntax,
			fmt.Sprintf("unexpected syntax %q at %s", s.rest(), start),
			nil,
		}
	}
}
