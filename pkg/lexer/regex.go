package lexer

import (
	"regexp"
)

type tokenRegex struct {
	Pattern *regexp.Regexp
	Raw     string
}

func re(raw string) tokenRegex {
	return tokenRegex{regexp.MustCompile(raw), raw}
}

// Token regex patterns
var tokenRegexes = map[TokenType]tokenRegex{
	ANDAND:  re(`^&&`),
	OROR:    re(`^\|\|`),
	INC:     re(`^\+\+`),
	DEC:     re(`^--`),
	PLUSEQ:  re(`^\+=`),
	MINUSEQ: re(`^-=`),
	MULTEQ:  re(`^\*=`),
	DIVEQ:   re(`^/=`),
	LE:      re(`^<=`),
	GE:      re(`^>=`),
	EQ:      re(`^==`),
	NE:      re(`^!=`),

	VAR:      re(`^var\b`),
	IF:       re(`^if\b`),
	ELSE:     re(`^else\b`),
	WHILE:    re(`^while\b`),
	FOR:      re(`^for\b`),
	BREAK:    re(`^break\b`),
	CONTINUE: re(`^continue\b`),
	AND:      re(`^and\b`),
	OR:       re(`^or\b`),

	ASSIGN: re(`^=`),
	PLUS:   re(`^\+`),
	MINUS:  re(`^-`),
	MULT:   re(`^\*`),
	DIV:    re(`^/`),
	NOT:    re(`^!`),
	LT:     re(`^<`),
	GT:     re(`^>`),
	DOT:    re(`^\.`),

	SEMICOLON: re(`^;`),
	COMMA:     re(`^,`),
	LPAREN:    re(`^\(`),
	RPAREN:    re(`^\)`),
	LBRACE:    re(`^\{`),
	RBRACE:    re(`^\}`),

	NUM:    re(`^\d+(\.\d+)?([eE][+-]?\d+)?`),
	STRING: re(`^"([^"\\]|\\.)*"`),
	ID:     re(`^[a-zA-Z_][a-zA-Z0-9_]*`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^\s+`)
	commentRegex    = regexp.MustCompile(`^//[^\n]*`)
)

// Token precedence order for matching (longer patterns first)
var tokenPrecedenceOrder = []TokenType{
	CONTINUE, BREAK, WHILE, ELSE, VAR, FOR, AND, IF, OR,
	ANDAND, OROR, INC, DEC, PLUSEQ, MINUSEQ, MULTEQ, DIVEQ,
	LE, GE, EQ, NE, ASSIGN, PLUS, MINUS, MULT, DIV, NOT, LT, GT, DOT,
	SEMICOLON, COMMA, LPAREN, RPAREN, LBRACE, RBRACE,
	NUM, STRING, ID,
}

// Get the regex pattern for a token type
func (t TokenType) Regex() *regexp.Regexp {
	if regex, ok := tokenRegexes[t]; ok {
		return regex.Pattern
	}

	return nil
}

// Get the raw regex string for a token type
func (t TokenType) RawRegex() string {
	if regex, ok := tokenRegexes[t]; ok {
		return regex.Raw
	}

	return ""
}

// MatchToken matches the first token at the start of the string.
// Whitespace and comments are reported as EOF with a non-empty lexeme so the caller can skip them.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.Pattern.FindString(s); match != "" {
				return tokenType, match, true
			}
		}
	}

	return ILLEGAL, string(s[0]), false
}
