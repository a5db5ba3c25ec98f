package lexer

import "fmt"

// TokenType represents the type of token in a provisioning prompt
type TokenType int

const (
	// Special tokens
	TOKEN_EOF TokenType = iota

	// Literals
	TOKEN_IDENT   // word characters (letters, digits, underscore)
	TOKEN_OPTIONS // a complete bracketed option list, e.g. [Issued,Available]
	TOKEN_JUNK    // any other character; prose the parser skips over

	// Delimiters
	TOKEN_LPAREN // (
	TOKEN_RPAREN // )
	TOKEN_COLON  // :
	TOKEN_COMMA  // ,
)

// Token represents a single lexical token
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string // For OPTIONS: the raw text between the brackets
	Start   int    // Rune offset in source where token starts
	End     int    // Rune offset in source where token ends (exclusive)
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case TOKEN_EOF:
		return "EOF"
	case TOKEN_IDENT:
		return "IDENT"
	case TOKEN_OPTIONS:
		return "OPTIONS"
	case TOKEN_JUNK:
		return "JUNK"
	case TOKEN_LPAREN:
		return "LPAREN"
	case TOKEN_RPAREN:
		return "RPAREN"
	case TOKEN_COLON:
		return "COLON"
	case TOKEN_COMMA:
		return "COMMA"
	default:
		return "UNKNOWN"
	}
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%s) [%d:%d]", t.Type, t.Lexeme, t.Start, t.End)
}
