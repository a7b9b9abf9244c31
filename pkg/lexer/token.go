package lexer

import (
	"fmt"
)

type TokenType int
type TokenCategory int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual string from source code
	Literal string    // Decoded value for numbers and strings, empty otherwise
	Pos     Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     pos,
	}
}

const (
	NONE TokenCategory = iota
	KEYWORD
	IDENTIFIER
	LITERAL
	OPERATOR
	DELIMITER
)

const (
	EOF TokenType = iota // End of file

	VAR      // var
	IF       // if
	ELSE     // else
	WHILE    // while
	FOR      // for
	BREAK    // break
	CONTINUE // continue
	AND      // and
	OR       // or

	ID     // id (identifier)
	NUM    // num (number)
	STRING // string literal

	ASSIGN   // =
	PLUSEQ   // +=
	MINUSEQ  // -=
	MULTEQ   // *=
	DIVEQ    // /=
	INC      // ++
	DEC      // --
	PLUS     // +
	MINUS    // -
	MULT     // *
	DIV      // /
	NOT      // !
	ANDAND   // &&
	OROR     // ||
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	EQ       // ==
	NE       // !=
	DOT      // .

	SEMICOLON // ;
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }

	ILLEGAL // illegal token
)

var Keywords = map[string]TokenType{
	"var":      VAR,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"break":    BREAK,
	"continue": CONTINUE,
	"and":      AND,
	"or":       OR,
}

var tokenNames = map[TokenType]string{
	VAR:       "var",
	IF:        "if",
	ELSE:      "else",
	WHILE:     "while",
	FOR:       "for",
	BREAK:     "break",
	CONTINUE:  "continue",
	AND:       "and",
	OR:        "or",
	ASSIGN:    "=",
	PLUSEQ:    "+=",
	MINUSEQ:   "-=",
	MULTEQ:    "*=",
	DIVEQ:     "/=",
	INC:       "++",
	DEC:       "--",
	PLUS:      "+",
	MINUS:     "-",
	MULT:      "*",
	DIV:       "/",
	NOT:       "!",
	ANDAND:    "&&",
	OROR:      "||",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	EQ:        "==",
	NE:        "!=",
	DOT:       ".",
	SEMICOLON: ";",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	ID:        "id",
	NUM:       "num",
	STRING:    "string",
	ILLEGAL:   "illegal",
	EOF:       "$",
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %v, nil, %s}",
			t.Type, t.Lexeme, t.Pos.String())
	}

	return fmt.Sprintf("T_{%s, %v, %q, %s}",
		t.Type, t.Lexeme, t.Literal, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := tokenNames[t]; ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// GetCategory returns the category of the token
func (t TokenType) GetCategory() TokenCategory {
	switch t {
	case VAR, IF, ELSE, WHILE, FOR, BREAK, CONTINUE, AND, OR:
		return KEYWORD
	case ID:
		return IDENTIFIER
	case NUM, STRING:
		return LITERAL
	case ASSIGN, PLUSEQ, MINUSEQ, MULTEQ, DIVEQ, INC, DEC,
		PLUS, MINUS, MULT, DIV, NOT, ANDAND, OROR,
		LT, GT, LE, GE, EQ, NE, DOT:
		return OPERATOR
	case SEMICOLON, COMMA, LPAREN, RPAREN, LBRACE, RBRACE:
		return DELIMITER
	default:
		return NONE
	}
}

// IsKeyword checks if the given identifier is a keyword and returns its TokenType if it is
func IsKeyword(identifier string) (TokenType, bool) {
	tokenType, ok := Keywords[identifier]
	return tokenType, ok
}
