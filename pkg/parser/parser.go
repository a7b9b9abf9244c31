package parser

import (
	"gmlite/pkg/ast"
	"gmlite/pkg/lexer"
)

type Parser struct {
	tokens []lexer.Token // every token of the input, ending with EOF
	pos    int           // index of the current token
}

// NewParser creates a new parser instance over the whole input of l
func NewParser(l *lexer.Lexer) *Parser {
	return &Parser{tokens: l.Tokenize()}
}

// Parse lexes and parses src into a program sequence
func Parse(src string) (*ast.Node, error) {
	return NewParser(lexer.NewLexer(src)).Parse()
}

// Parse reads statements until end of input. Parsing stops at the first error.
func (p *Parser) Parse() (*ast.Node, error) {
	prog := ast.New(ast.KindSequence, "", p.current().Pos)
	for p.current().Type != lexer.EOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, stmt)
	}

	return prog, nil
}

func (p *Parser) statement() (*ast.Node, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.SEMICOLON:
		p.advance()
		return ast.New(ast.KindEmpty, "", tok.Pos), nil

	case lexer.LBRACE:
		return p.block()

	case lexer.IF:
		return p.ifStatement()

	case lexer.WHILE:
		return p.whileStatement()

	case lexer.FOR:
		return p.forStatement()

	case lexer.BREAK, lexer.CONTINUE:
		p.advance()
		kind := ast.KindBreak
		if tok.Type == lexer.CONTINUE {
			kind = ast.KindContinue
		}
		if _, err := p.expect(lexer.SEMICOLON, "Missing semicolon"); err != nil {
			return nil, err
		}
		return ast.New(kind, "", tok.Pos), nil
	}

	node, err := p.instruction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "Missing semicolon"); err != nil {
		return nil, err
	}

	return node, nil
}

// instruction parses a declaration, a mutation or a call, without the trailing semicolon
func (p *Parser) instruction() (*ast.Node, error) {
	if p.current().Type == lexer.VAR {
		return p.declaration()
	}

	start := p.current()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	op := p.current()
	switch op.Type {
	case lexer.ASSIGN, lexer.PLUSEQ, lexer.MINUSEQ, lexer.MULTEQ, lexer.DIVEQ:
		if !assignable(expr) {
			return nil, p.errorAt(start, "Invalid assignment target")
		}
		p.advance()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		m := ast.New(ast.KindMutation, op.Lexeme, op.Pos)
		m.Left, m.Right = expr, value
		return m, nil

	case lexer.INC, lexer.DEC:
		if !assignable(expr) {
			return nil, p.errorAt(start, "Invalid assignment target")
		}
		p.advance()
		m := ast.New(ast.KindMutation, op.Lexeme, op.Pos)
		m.Left = expr
		return m, nil
	}

	if expr.Kind != ast.KindCall {
		return nil, p.errorAt(start, "Expression has no effect")
	}

	stmt := ast.New(ast.KindExprStmt, "", expr.Pos)
	stmt.Right = expr
	return stmt, nil
}

func (p *Parser) declaration() (*ast.Node, error) {
	decl := ast.New(ast.KindDeclaration, "", p.advance().Pos)

	for {
		tok := p.current()
		if tok.Type.GetCategory() == lexer.KEYWORD {
			return nil, p.errorAt(tok, "Cannot use reserved keyword as identifier")
		}
		if _, err := p.expect(lexer.ID, "Missing identifier"); err != nil {
			return nil, err
		}

		d := ast.New(ast.KindDeclarator, tok.Lexeme, tok.Pos)
		if p.match(lexer.ASSIGN) {
			init, err := p.expression()
			if err != nil {
				return nil, err
			}
			d.Right = init
		}
		decl.Children = append(decl.Children, d)

		if !p.match(lexer.COMMA) {
			return decl, nil
		}
	}
}

func (p *Parser) block() (*ast.Node, error) {
	open, err := p.expect(lexer.LBRACE, "Missing opening brace")
	if err != nil {
		return nil, err
	}

	block := ast.New(ast.KindBlock, "", open.Pos)
	for !p.match(lexer.RBRACE) {
		if p.current().Type == lexer.EOF {
			return nil, p.errorAt(p.current(), "Missing closing brace")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, stmt)
	}

	return block, nil
}

func (p *Parser) ifStatement() (*ast.Node, error) {
	node := ast.New(ast.KindIf, "", p.advance().Pos)

	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	node.Children = []*ast.Node{cond, then}

	if p.match(lexer.ELSE) {
		otherwise, err := p.statement()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, otherwise)
	}

	return node, nil
}

func (p *Parser) whileStatement() (*ast.Node, error) {
	node := ast.New(ast.KindWhile, "", p.advance().Pos)

	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	node.Children = []*ast.Node{cond, body}
	return node, nil
}

// forStatement parses for(init; cond; post) body. The post clause may also be a block.
func (p *Parser) forStatement() (*ast.Node, error) {
	node := ast.New(ast.KindFor, "", p.advance().Pos)
	if _, err := p.expect(lexer.LPAREN, "Missing opening parenthesis"); err != nil {
		return nil, err
	}

	init := ast.New(ast.KindEmpty, "", p.current().Pos)
	if p.current().Type != lexer.SEMICOLON {
		var err error
		if init, err = p.instruction(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Missing semicolon"); err != nil {
		return nil, err
	}

	// an empty condition loops until break
	cond := ast.New(ast.KindNumber, "1", p.current().Pos)
	if p.current().Type != lexer.SEMICOLON {
		var err error
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Missing semicolon"); err != nil {
		return nil, err
	}

	post := ast.New(ast.KindEmpty, "", p.current().Pos)
	switch p.current().Type {
	case lexer.RPAREN:
	case lexer.LBRACE:
		var err error
		if post, err = p.block(); err != nil {
			return nil, err
		}
	default:
		var err error
		if post, err = p.instruction(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN, "Missing closing parenthesis"); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	node.Children = []*ast.Node{init, cond, post, body}
	return node, nil
}

// condition parses the expression after if or while, rejecting an empty ()
func (p *Parser) condition() (*ast.Node, error) {
	if p.current().Type == lexer.LPAREN && p.peek().Type == lexer.RPAREN {
		return nil, p.errorAt(p.peek(), "Empty condition")
	}

	return p.expression()
}

func assignable(n *ast.Node) bool {
	return n.Kind == ast.KindName || n.Kind == ast.KindField
}

// current returns the token under the cursor
func (p *Parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// advance moves past the current token and returns it. The cursor never moves past EOF.
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.current().Type != t {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(t lexer.TokenType, msg string) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != t {
		return tok, p.errorAt(tok, msg)
	}
	p.advance()
	return tok, nil
}
