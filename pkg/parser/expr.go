package parser

import (
	"slices"

	"gmlite/pkg/ast"
	"gmlite/pkg/lexer"
)

// Binary operator levels, lowest precedence first. All levels are left-associative.
var binaryLevels = [][]lexer.TokenType{
	{lexer.ANDAND, lexer.OROR, lexer.AND, lexer.OR},
	{lexer.EQ, lexer.NE, lexer.GE, lexer.LE, lexer.GT, lexer.LT},
	{lexer.PLUS, lexer.MINUS},
	{lexer.MULT, lexer.DIV},
}

func (p *Parser) expression() (*ast.Node, error) {
	return p.binary(0)
}

func (p *Parser) binary(level int) (*ast.Node, error) {
	if level == len(binaryLevels) {
		return p.unary()
	}

	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op := p.current()
		if !slices.Contains(binaryLevels[level], op.Type) {
			return left, nil
		}
		p.advance()

		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}

		n := ast.New(ast.KindBinary, operatorText(op.Type), op.Pos)
		n.Left, n.Right = left, right
		left = n
	}
}

func (p *Parser) unary() (*ast.Node, error) {
	op := p.current()
	switch op.Type {
	case lexer.PLUS, lexer.MINUS, lexer.NOT:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		n := ast.New(ast.KindUnary, op.Lexeme, op.Pos)
		n.Right = operand
		return n, nil
	}

	return p.postfix()
}

// postfix parses a primary followed by any number of .field reads
func (p *Parser) postfix() (*ast.Node, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == lexer.DOT {
		p.advance()
		name, err := p.expect(lexer.ID, "Expected field name")
		if err != nil {
			return nil, err
		}
		field := ast.New(ast.KindField, name.Lexeme, name.Pos)
		field.Left = expr
		expr = field
	}

	return expr, nil
}

func (p *Parser) primary() (*ast.Node, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.NUM:
		p.advance()
		return ast.New(ast.KindNumber, tok.Literal, tok.Pos), nil

	case lexer.STRING:
		p.advance()
		return ast.New(ast.KindText, tok.Literal, tok.Pos), nil

	case lexer.ID:
		p.advance()
		if p.current().Type == lexer.LPAREN {
			return p.call(tok)
		}
		return ast.New(ast.KindName, tok.Lexeme, tok.Pos), nil

	case lexer.LPAREN:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "Missing closing parenthesis"); err != nil {
			return nil, err
		}
		n := ast.New(ast.KindParen, "", tok.Pos)
		n.Right = inner
		return n, nil

	case lexer.SEMICOLON, lexer.RPAREN:
		return nil, p.errorAt(tok, "Missing expression")
	}

	return nil, p.errorAt(tok, "Expected expression")
}

// call parses the argument list after name; the cursor is on '('
func (p *Parser) call(name lexer.Token) (*ast.Node, error) {
	p.advance()
	n := ast.New(ast.KindCall, name.Lexeme, name.Pos)

	if p.match(lexer.RPAREN) {
		return n, nil
	}

	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, arg)

		if p.match(lexer.COMMA) {
			continue
		}
		if _, err := p.expect(lexer.RPAREN, "Missing closing parenthesis"); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// operatorText normalizes the keyword spellings of the logical operators
func operatorText(t lexer.TokenType) string {
	switch t {
	case lexer.AND:
		return lexer.ANDAND.String()
	case lexer.OR:
		return lexer.OROR.String()
	}
	return t.String()
}
