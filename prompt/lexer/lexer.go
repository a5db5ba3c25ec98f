package lexer

import "unicode"

// Lexer tokenizes the DocType section of a provisioning prompt.
//
// Prompts are free text, so the lexer never fails: anything that is not an
// identifier, a delimiter, or a complete bracketed option list comes out as
// a JUNK token and the parser decides what to skip. Whitespace separates
// tokens and is discarded, but every token carries its rune offsets so the
// parser can enforce adjacency (a field name must touch its colon, an
// option list must touch its type).
type Lexer struct {
	source  []rune
	start   int
	current int
	tokens  []Token
}

// New creates a new Lexer for the given source text
func New(source string) *Lexer {
	return &Lexer{
		source: []rune(source),
		tokens: make([]Token, 0, len(source)/4),
	}
}

// ScanTokens scans all tokens from the source, ending with an EOF token
func (l *Lexer) ScanTokens() []Token {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:  TOKEN_EOF,
		Start: l.current,
		End:   l.current,
	})

	return l.tokens
}

// scanToken scans a single token
func (l *Lexer) scanToken() {
	r := l.advance()

	switch r {
	case '(':
		l.addToken(TOKEN_LPAREN, "")
	case ')':
		l.addToken(TOKEN_RPAREN, "")
	case ':':
		l.addToken(TOKEN_COLON, "")
	case ',':
		l.addToken(TOKEN_COMMA, "")
	case '[':
		l.scanOptions()
	case ' ', '\t', '\r', '\n', '\f', '\v':
		// Whitespace separates tokens
	default:
		if isWordChar(r) {
			l.scanIdent()
		} else {
			l.addToken(TOKEN_JUNK, "")
		}
	}
}

// scanOptions scans a bracketed option list. The interior is captured raw,
// up to but not including the closing bracket. The search for ']' stops at
// a ')' that terminates the enclosing definition body (one that ends the
// section or touches a ','): an option list belongs to a single body and
// must never claim a ']' from a later one. A '[' with no closing bracket
// before such a terminator is not an option list at all; it becomes a JUNK
// token for the single '['.
func (l *Lexer) scanOptions() {
	end := -1
	for i := l.current; i < len(l.source); i++ {
		r := l.source[i]
		if r == ']' {
			end = i
			break
		}
		if r == ')' && (i+1 == len(l.source) || l.source[i+1] == ',') {
			break
		}
	}

	if end < 0 {
		l.addToken(TOKEN_JUNK, "")
		return
	}

	literal := string(l.source[l.current:end])
	l.current = end + 1
	l.addToken(TOKEN_OPTIONS, literal)
}

// scanIdent scans a run of word characters
func (l *Lexer) scanIdent() {
	for !l.isAtEnd() && isWordChar(l.peek()) {
		l.advance()
	}
	l.addToken(TOKEN_IDENT, "")
}

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() rune {
	r := l.source[l.current]
	l.current++
	return r
}

// peek returns the current character without consuming it
func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// isWordChar checks if a rune is a letter, digit, or underscore
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// addToken adds a token to the token list
func (l *Lexer) addToken(tokenType TokenType, literal string) {
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  string(l.source[l.start:l.current]),
		Literal: literal,
		Start:   l.start,
		End:     l.current,
	})
}
