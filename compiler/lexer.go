package compiler

// The lexer is a plain byte scanner: a token is a maximal run of
// non-whitespace, '#' starts a comment through the end of the line, and
// end of input terminates. Line numbers are tracked for diagnostics only.
type scanner struct {
	src  []byte
	pos  int
	line int
}

func newScanner(src []byte) *scanner {
	return &scanner{src: src, line: 1}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// next returns the next token and the line it starts on.
func (s *scanner) next() (string, int, bool) {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == '\n':
			s.line++
			s.pos++
		case isSpace(c):
			s.pos++
		case c == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			start := s.pos
			for s.pos < len(s.src) && !isSpace(s.src[s.pos]) {
				s.pos++
			}
			return string(s.src[start:s.pos]), s.line, true
		}
	}
	return "", s.line, false
}
