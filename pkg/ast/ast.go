// Package ast defines the syntax tree handed from the parser to the code generator.
//
// Nodes are owned recursive values: a parent holds its children through Left,
// Right and Children, and no node points back at its parent.
package ast

import (
	"fmt"
	"strings"

	"gmlite/pkg/lexer"
)

type Kind int

const (
	KindInvalid Kind = iota

	KindSequence    // Children run in order, no scope of their own
	KindBlock       // { Children }, opens a scope
	KindEmpty       // ;
	KindNumber      // Text holds the literal as written
	KindText        // Text holds the decoded string
	KindName        // Text holds the identifier
	KindDeclaration // var Children..., each a KindDeclarator
	KindDeclarator  // Text is the name, Right the optional initializer
	KindMutation    // Text is the operator, Left the target, Right the value (nil for ++ and --)
	KindField       // Left.Text, read from another instance
	KindBinary      // Left Text Right
	KindUnary       // Text Right
	KindParen       // ( Right )
	KindCall        // Text(Children...)
	KindExprStmt    // Right evaluated for its effect, result discarded
	KindIf          // Children: condition, then, optional else
	KindWhile       // Children: condition, body
	KindFor         // Children: init, condition, post, body
	KindBreak
	KindContinue
)

var kindNames = map[Kind]string{
	KindInvalid:     "invalid",
	KindSequence:    "sequence",
	KindBlock:       "block",
	KindEmpty:       "empty",
	KindNumber:      "number",
	KindText:        "text",
	KindName:        "name",
	KindDeclaration: "declaration",
	KindDeclarator:  "declarator",
	KindMutation:    "mutation",
	KindField:       "field",
	KindBinary:      "binary",
	KindUnary:       "unary",
	KindParen:       "paren",
	KindCall:        "call",
	KindExprStmt:    "exprstmt",
	KindIf:          "if",
	KindWhile:       "while",
	KindFor:         "for",
	KindBreak:       "break",
	KindContinue:    "continue",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

type Node struct {
	Kind     Kind
	Text     string
	Left     *Node
	Right    *Node
	Children []*Node
	Pos      lexer.Position
}

// New creates a node of the given kind at pos
func New(kind Kind, text string, pos lexer.Position) *Node {
	return &Node{Kind: kind, Text: text, Pos: pos}
}

// String renders the tree in a compact prefix form, e.g. binary<+>(number<1>,number<2>)
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("nil")
		return
	}

	sb.WriteString(n.Kind.String())
	if n.Text != "" {
		fmt.Fprintf(sb, "<%s>", n.Text)
	}

	if n.Left != nil || n.Right != nil {
		sb.WriteByte('(')
		if n.Left != nil {
			n.Left.write(sb)
		}
		sb.WriteByte(',')
		if n.Right != nil {
			n.Right.write(sb)
		}
		sb.WriteByte(')')
	}

	if len(n.Children) > 0 {
		sb.WriteByte('[')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.write(sb)
		}
		sb.WriteByte(']')
	}
}
