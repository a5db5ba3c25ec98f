package parser

import (
	"strings"
	"unicode"

	"github.com/benchforge/benchforge/prompt/lexer"
)

// docTypeMarker separates the prose preamble from the record type list
const docTypeMarker = "with DocTypes:"

// Parse converts a provisioning prompt of the form
//
//	"Create an app named library_app with DocTypes: Article (title: Data,
//	 status: Select[Issued,Available]), Member (name: Data)"
//
// into a Descriptor. The parse is atomic: any failure returns a nil
// Descriptor and a ParseError.
func Parse(prompt string) (*Descriptor, error) {
	appName, ok := scanAppName(prompt)
	if !ok {
		return nil, errorf(ErrMissingApplicationName, "App name not found in prompt")
	}

	idx := strings.Index(prompt, docTypeMarker)
	if idx < 0 {
		return nil, errorf(ErrMissingDocTypeSection, "No DocTypes specified in prompt")
	}
	section := strings.TrimSpace(prompt[idx+len(docTypeMarker):])

	p := &parser{tokens: lexer.New(section).ScanTokens()}
	docTypes, err := p.parseDocTypes()
	if err != nil {
		return nil, err
	}

	// parseDocTypes never returns an empty list without an error; the
	// guard keeps the last error code reachable if the scan changes.
	if len(docTypes) == 0 {
		return nil, errorf(ErrNoRecordTypesParsed, "Failed to parse any DocTypes")
	}

	return &Descriptor{AppName: appName, DocTypes: docTypes}, nil
}

// parser scans a token stream for record type definitions. Prompts are
// free text, so this is a scanner rather than a strict grammar: tokens
// that cannot start a definition are skipped.
type parser struct {
	tokens  []lexer.Token
	current int
}

// parseDocTypes scans for "<CapitalizedIdentifier> ( <body> )" definitions.
// A body ends at the first ')' that is immediately followed by ',' or by
// the end of the section; a ')' followed by anything else is body content.
// Bodies therefore must not contain a ')' that touches a ','.
func (p *parser) parseDocTypes() ([]*DocTypeNode, error) {
	var docTypes []*DocTypeNode
	index := map[string]int{}

	for !p.isAtEnd() {
		tok := p.peek()
		if tok.Type != lexer.TOKEN_IDENT {
			p.advance()
			continue
		}
		name, ok := capitalizedSuffix(tok.Lexeme)
		if !ok || p.peekNext().Type != lexer.TOKEN_LPAREN {
			p.advance()
			continue
		}

		bodyStart := p.current + 2
		bodyEnd, ok := p.findBodyEnd(bodyStart)
		if !ok {
			// No valid terminator; this candidate never matches.
			// Resume scanning right after the name so definitions
			// inside the would-be body still get their chance.
			p.advance()
			continue
		}

		fields := scanFields(p.tokens[bodyStart:bodyEnd])
		if len(fields) == 0 {
			return nil, ParseError{
				Code:    ErrNoFieldsFound,
				Message: "No valid fields found for DocType: " + name,
				DocType: name,
			}
		}

		if at, seen := index[name]; seen {
			// A repeated name replaces the earlier field list but
			// keeps its original position.
			docTypes[at].Fields = fields
		} else {
			index[name] = len(docTypes)
			docTypes = append(docTypes, &DocTypeNode{Name: name, Fields: fields})
		}

		p.current = bodyEnd + 1
		// Consume the comma that anchored the body, if that is how it ended
		if p.check(lexer.TOKEN_COMMA) && p.peek().Start == p.tokens[bodyEnd].End {
			p.advance()
		}
	}

	if len(docTypes) == 0 {
		return nil, errorf(ErrNoRecordTypesFound, "No valid DocTypes found in prompt")
	}
	return docTypes, nil
}

// findBodyEnd returns the index of the ')' token terminating a body that
// starts at the given token index
func (p *parser) findBodyEnd(from int) (int, bool) {
	for i := from; i < len(p.tokens); i++ {
		if p.tokens[i].Type != lexer.TOKEN_RPAREN {
			continue
		}
		next := p.tokens[i+1]
		if next.Type == lexer.TOKEN_EOF {
			return i, true
		}
		// The comma must touch the closing paren
		if next.Type == lexer.TOKEN_COMMA && next.Start == p.tokens[i].End {
			return i, true
		}
	}
	return 0, false
}

// scanFields scans a body for "identifier: Type" or "identifier: Type[...]"
// field definitions. Matches are appended in encountered order; duplicate
// field names are kept as separate entries.
func scanFields(tokens []lexer.Token) []*FieldNode {
	var fields []*FieldNode

	for i := 0; i+2 < len(tokens); i++ {
		name := tokens[i]
		if name.Type != lexer.TOKEN_IDENT {
			continue
		}
		colon := tokens[i+1]
		// The colon must touch the field name; "title : Data" is prose
		if colon.Type != lexer.TOKEN_COLON || colon.Start != name.End {
			continue
		}
		typ := tokens[i+2]
		if typ.Type != lexer.TOKEN_IDENT {
			continue
		}
		base := letterPrefix(typ.Lexeme)
		if base == "" {
			continue
		}

		field := &FieldNode{
			Name:     name.Lexeme,
			Label:    capitalize(name.Lexeme),
			Type:     base,
			Required: name.Lexeme == "name",
		}

		// An option list counts only when the type token is letters all
		// the way through and the opening bracket touches it
		i += 2
		if base == typ.Lexeme && i+1 < len(tokens) {
			if opts := tokens[i+1]; opts.Type == lexer.TOKEN_OPTIONS && opts.Start == typ.End {
				field.Options = strings.ReplaceAll(opts.Literal, ",", "\n")
				i++
			}
		}

		fields = append(fields, field)
	}

	return fields
}

// scanAppName finds the first "named <identifier>" occurrence, where the
// identifier is lowercase letters and underscores
func scanAppName(prompt string) (string, bool) {
	for i := 0; i+5 <= len(prompt); i++ {
		if prompt[i:i+5] != "named" {
			continue
		}
		j := i + 5
		for j < len(prompt) && isSpace(prompt[j]) {
			j++
		}
		if j == i+5 {
			continue
		}
		start := j
		for j < len(prompt) && (prompt[j] == '_' || prompt[j] >= 'a' && prompt[j] <= 'z') {
			j++
		}
		if j == start {
			continue
		}
		return prompt[start:j], true
	}
	return "", false
}

// capitalizedSuffix extracts a record type name from an identifier token:
// the suffix starting at the first uppercase ASCII letter that still has
// at least one character after it
func capitalizedSuffix(lexeme string) (string, bool) {
	runes := []rune(lexeme)
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] >= 'A' && runes[i] <= 'Z' {
			return string(runes[i:]), true
		}
	}
	return "", false
}

// letterPrefix returns the leading run of ASCII letters
func letterPrefix(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return s[:i]
		}
	}
	return s
}

// capitalize uppercases the first rune and lowercases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// Token stream helpers

func (p *parser) isAtEnd() bool {
	return p.tokens[p.current].Type == lexer.TOKEN_EOF
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *parser) peekNext() lexer.Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *parser) check(tokenType lexer.TokenType) bool {
	return p.peek().Type == tokenType
}
