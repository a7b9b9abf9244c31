package parser

import (
	"fmt"

	"gmlite/pkg/color"
	"gmlite/pkg/lexer"
)

// Error is a parse failure at a source position
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Format renders the error for a terminal, coloured when color output is enabled
func (e *Error) Format() string {
	return color.BoldText(color.RedText(e.Msg)) + " at " + color.YellowText(fmt.Sprintf("Line: %d, Column %d", e.Pos.Line, e.Pos.Column))
}

// errorAt builds an error for tok, naming what was found instead
func (p *Parser) errorAt(tok lexer.Token, msg string) *Error {
	switch tok.Type {
	case lexer.ILLEGAL:
		msg = fmt.Sprintf("Illegal token '%s'", tok.Lexeme)
	case lexer.EOF:
		msg += " at end of input"
	default:
		msg += fmt.Sprintf(", found '%s'", tok.Lexeme)
	}

	return &Error{Pos: tok.Pos, Msg: msg}
}
