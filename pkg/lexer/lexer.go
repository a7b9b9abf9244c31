package lexer

import "strings"

type Lexer struct {
	input    string // input string to be tokenized
	length   int    // length of the input string
	position int    // current position in the input string
	line     int    // current line number for error reporting
	column   int    // current column number for error reporting
}

// Create a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:    s,
		length:   len(s),
		position: 0,
		line:     1,
		column:   1,
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	// End of input
	if l.position >= l.length {
		return NewToken(EOF, "", "", l.currentPosition())
	}

	// Regex match the first token it sees from the remaining input from current position to the end
	remaining := l.input[l.position:]
	tokenType, lexeme, matched := MatchToken(remaining)

	if !matched || tokenType == EOF {
		if tokenType == EOF && lexeme != "" {
			l.advance(len(lexeme))
			return l.NextToken()
		}

		pos := l.currentPosition()
		char := string(l.input[l.position])
		l.advance(1)

		return NewToken(ILLEGAL, char, "", pos)
	}

	pos := l.currentPosition()
	literal := ""
	switch tokenType {
	case NUM:
		literal = lexeme
	case STRING:
		text, ok := unescape(lexeme[1 : len(lexeme)-1])
		if !ok {
			l.advance(len(lexeme))
			return NewToken(ILLEGAL, lexeme, "", pos)
		}
		literal = text
	}

	l.advance(len(lexeme))

	return NewToken(tokenType, lexeme, literal, pos)
}

// View next token without advancing the position
func (l *Lexer) Peek() Token {
	// save state
	cpos := l.position
	cline := l.line
	ccol := l.column

	token := l.NextToken()

	// restore state
	l.position = cpos
	l.line = cline
	l.column = ccol

	return token
}

// Tokenize reads every remaining token, including the trailing EOF
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// Check if there are more characters to read
func (l *Lexer) HasMore() bool {
	return l.position < l.length
}

// Skip whitespace and comments
func (l *Lexer) skipWhitespace() {
	for l.position < l.length {
		ch := l.input[l.position]

		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			l.advance(1)
		} else if l.position+1 < l.length && ch == '/' && l.input[l.position+1] == '/' {
			for l.position < l.length && l.input[l.position] != '\n' {
				l.advance(1)
			}
		} else {
			break
		}
	}
}

// Advance the lexer position by n characters
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.position >= l.length {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}

// unescape decodes \n, \\ and \" inside a string literal body
func unescape(body string) (string, bool) {
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var sb strings.Builder
	escaping := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		if !escaping {
			if c == '\\' {
				escaping = true
			} else {
				sb.WriteByte(c)
			}
			continue
		}

		escaping = false
		switch c {
		case 'n':
			sb.WriteByte('\n')
		case '\\', '"':
			sb.WriteByte(c)
		default:
			return "", false
		}
	}

	return sb.String(), !escaping
}
