package lexer_test

import (
	"gmlite/pkg/lexer"
	"testing"
)

func TestComments(t *testing.T) {
	input := `// test comment
var x = 10; // another test comment
// another another test comment
var y = 20.5;`

	mylexer := lexer.NewLexer(input)
	expectedTokens := []lexer.TokenType{
		lexer.VAR, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.SEMICOLON,
		lexer.VAR, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.SEMICOLON,
		lexer.EOF,
	}

	for i, expected := range expectedTokens {
		token := mylexer.NextToken()
		if token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s", i, expected, token.Type)
		}
	}
}

func TestPositions(t *testing.T) {
	mylexer := lexer.NewLexer("var x;\n  x++;")
	tokens := mylexer.Tokenize()

	// the second line's `x` sits at line 2, column 3
	x := tokens[3]
	if x.Type != lexer.ID || x.Pos.Line != 2 || x.Pos.Column != 3 {
		t.Errorf("expected id at 2:3, got %s", x)
	}
	if x.Pos.Offset != 9 {
		t.Errorf("expected offset 9, got %d", x.Pos.Offset)
	}
}
