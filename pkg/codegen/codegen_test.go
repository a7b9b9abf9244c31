package codegen

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gmlite/pkg/ast"
	"gmlite/pkg/bytecode"
	"gmlite/pkg/lexer"
	"gmlite/pkg/parser"
)

func compile(t *testing.T, src string) ([]byte, []bytecode.Instruction) {
	t.Helper()

	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	code, err := Compile(root)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	ins, err := bytecode.DecodeAll(code)
	if err != nil {
		t.Fatalf("DecodeAll(%q): %v", src, err)
	}
	return code, ins
}

// find returns the decoded instructions with the given opcode, in address order
func find(ins []bytecode.Instruction, op bytecode.Op) []bytecode.Instruction {
	var out []bytecode.Instruction
	for _, in := range ins {
		if in.Op == op {
			out = append(out, in)
		}
	}
	return out
}

func TestLoweringOps(t *testing.T) {
	const (
		PUSHVAL   = bytecode.PUSHVAL
		PUSHTEXT  = bytecode.PUSHTEXT
		PUSHVAR   = bytecode.PUSHVAR
		POP       = bytecode.POP
		DECLARE   = bytecode.DECLARE
		DECLSET   = bytecode.DECLSET
		BINOP     = bytecode.BINOP
		UNOP      = bytecode.UNOP
		DIRECT    = bytecode.DIRECT
		INDIRECT  = bytecode.INDIRECT
		INDEXP    = bytecode.INDEXP
		BINAS     = bytecode.BINAS
		UNAS      = bytecode.UNAS
		TRUTH     = bytecode.TRUTH
		OPENSCOPE = bytecode.OPENSCOPE
		EXITSCOPE = bytecode.EXITSCOPE
		SAVESCOPE = bytecode.SAVESCOPE
		LOADSCOPE = bytecode.LOADSCOPE
		BREAK     = bytecode.BREAK
		JSIF      = bytecode.JSIF
		JLIF      = bytecode.JLIF
		JS        = bytecode.JS
		CALL      = bytecode.CALL
	)

	tests := []struct {
		src  string
		want []bytecode.Op
	}{
		{"var x = 2*4+1==9;", []bytecode.Op{PUSHVAL, PUSHVAL, BINOP, PUSHVAL, BINOP, PUSHVAL, BINOP, DECLSET}},
		{"var x, y;", []bytecode.Op{DECLARE, DECLARE}},
		{"var x; x += 2;", []bytecode.Op{DECLARE, PUSHVAL, DIRECT, BINAS}},
		{"x = -(1);", []bytecode.Op{PUSHVAL, UNOP, DIRECT, BINAS}},
		{"a.b++;", []bytecode.Op{PUSHVAR, INDIRECT, UNAS}},
		{"a.b = 2;", []bytecode.Op{PUSHVAL, PUSHVAR, INDIRECT, BINAS}},
		{"x = a.b;", []bytecode.Op{PUSHVAR, INDEXP, DIRECT, BINAS}},
		{`print("hi");`, []bytecode.Op{PUSHTEXT, CALL, POP}},
		{"{ var y; ; }", []bytecode.Op{OPENSCOPE, DECLARE, EXITSCOPE}},
		{"if (x) y = 1;", []bytecode.Op{PUSHVAR, TRUTH, JSIF, OPENSCOPE, PUSHVAL, DIRECT, BINAS, EXITSCOPE}},
		{
			"if x { y = 1; } else y = 2;",
			[]bytecode.Op{PUSHVAR, TRUTH, JSIF, OPENSCOPE, PUSHVAL, DIRECT, BINAS, EXITSCOPE, JS, OPENSCOPE, PUSHVAL, DIRECT, BINAS, EXITSCOPE},
		},
		{"while (x) { x--; }", []bytecode.Op{SAVESCOPE, PUSHVAR, TRUTH, JLIF, OPENSCOPE, DIRECT, UNAS, BREAK, LOADSCOPE}},
		{
			"for(var i=0;i<4;i++) print(i);",
			[]bytecode.Op{
				OPENSCOPE, PUSHVAL, DECLSET, JS, DIRECT, UNAS, PUSHVAR, PUSHVAL, BINOP, TRUTH, JLIF,
				SAVESCOPE, OPENSCOPE, PUSHVAR, CALL, POP, EXITSCOPE, LOADSCOPE, JS, EXITSCOPE,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, ins := compile(t, tt.src)
			got := bytecode.Ops(ins)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v\nwant %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("op %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOperatorSubOps(t *testing.T) {
	tests := []struct {
		op   string
		want bytecode.BinaryOp
	}{
		{"+", bytecode.ADD}, {"-", bytecode.SUB}, {"*", bytecode.MUL}, {"/", bytecode.DIV},
		{"==", bytecode.EQ}, {"!=", bytecode.NEQ}, {">=", bytecode.GTE}, {"<=", bytecode.LTE},
		{">", bytecode.GT}, {"<", bytecode.LT}, {"&&", bytecode.AND}, {"||", bytecode.OR},
		{"and", bytecode.AND}, {"or", bytecode.OR},
	}

	for _, tt := range tests {
		_, ins := compile(t, "x = a "+tt.op+" b;")
		binops := find(ins, bytecode.BINOP)
		if len(binops) != 1 || bytecode.BinaryOp(binops[0].Sub) != tt.want {
			t.Errorf("%s: got %v, want %s", tt.op, binops, tt.want)
		}
	}

	_, ins := compile(t, "x -= 1; x *= 2; x /= 3; x--;")
	var subs []byte
	for _, in := range ins {
		if in.Op == bytecode.BINAS || in.Op == bytecode.UNAS {
			subs = append(subs, in.Sub)
		}
	}
	want := []byte{byte(bytecode.MUTSUB), byte(bytecode.MUTMUL), byte(bytecode.MUTDIV), byte(bytecode.DECREMENT)}
	if string(subs) != string(want) {
		t.Errorf("mutation sub-ops: got % X, want % X", subs, want)
	}
}

func TestIfJumpTargets(t *testing.T) {
	code, ins := compile(t, "if (x) y = 1; else y = 2;")

	jsif := find(ins, bytecode.JSIF)[0]
	js := find(ins, bytecode.JS)[0]
	scopes := find(ins, bytecode.OPENSCOPE)

	if jsif.Target() != int64(scopes[1].Offset) {
		t.Errorf("JSIF lands at %08X, else block starts at %08X", jsif.Target(), scopes[1].Offset)
	}
	if js.Target() != int64(len(code)) {
		t.Errorf("JS lands at %08X, code ends at %08X", js.Target(), len(code))
	}
}

func TestWhileJumpTargets(t *testing.T) {
	code, ins := compile(t, "while (x) x--;")

	jlif := find(ins, bytecode.JLIF)[0]
	back := find(ins, bytecode.BREAK)[0]
	load := find(ins, bytecode.LOADSCOPE)[0]

	if jlif.Target() != int64(load.Offset) {
		t.Errorf("JLIF lands at %08X, LOADSCOPE is at %08X", jlif.Target(), load.Offset)
	}
	if back.Target() != 0 {
		t.Errorf("back edge lands at %08X, want 0", back.Target())
	}
	if load.Next() != len(code) {
		t.Errorf("LOADSCOPE is not the last instruction")
	}
}

func TestForJumpTargets(t *testing.T) {
	code, ins := compile(t, "for(var i=0;i<4;i++) print(i);")

	jumps := find(ins, bytecode.JS)
	over, back := jumps[0], jumps[1]
	post := find(ins, bytecode.DIRECT)[0]
	cond := find(ins, bytecode.PUSHVAR)[0]
	jlif := find(ins, bytecode.JLIF)[0]

	if over.Target() != int64(cond.Offset) {
		t.Errorf("jump over post lands at %08X, condition starts at %08X", over.Target(), cond.Offset)
	}
	if back.Target() != int64(post.Offset) || back.Jump >= 0 {
		t.Errorf("back edge %+d lands at %08X, post starts at %08X", back.Jump, back.Target(), post.Offset)
	}
	if jlif.Target() != int64(len(code)-1) {
		t.Errorf("JLIF lands at %08X, final EXITSCOPE is at %08X", jlif.Target(), len(code)-1)
	}
}

func TestBreakContinuePatches(t *testing.T) {
	t.Run("while", func(t *testing.T) {
		code, ins := compile(t, "while (1) { if (x) break; continue; }")
		breaks := find(ins, bytecode.BREAK)
		if len(breaks) != 3 {
			t.Fatalf("got %d BREAK instructions, want 3", len(breaks))
		}
		if breaks[0].Target() != int64(len(code)) {
			t.Errorf("break inside if lands at %08X, want loop end %08X", breaks[0].Target(), len(code))
		}
		if breaks[1].Target() != 0 {
			t.Errorf("continue lands at %08X, want 0", breaks[1].Target())
		}
		if breaks[2].Target() != 0 {
			t.Errorf("back edge lands at %08X, want 0", breaks[2].Target())
		}
	})

	t.Run("for", func(t *testing.T) {
		code, ins := compile(t, "for(;;i++) { if (i > 3) { break; } continue; }")
		breaks := find(ins, bytecode.BREAK)
		post := find(ins, bytecode.DIRECT)[0]
		if len(breaks) != 2 {
			t.Fatalf("got %d BREAK instructions, want 2", len(breaks))
		}
		if breaks[0].Target() != int64(len(code)-1) {
			t.Errorf("break lands at %08X, want final EXITSCOPE %08X", breaks[0].Target(), len(code)-1)
		}
		if breaks[1].Target() != int64(post.Offset) {
			t.Errorf("continue lands at %08X, want post %08X", breaks[1].Target(), post.Offset)
		}
	})

	t.Run("nested", func(t *testing.T) {
		code, ins := compile(t, "while (a) { while (b) break; break; }")
		breaks := find(ins, bytecode.BREAK)
		loads := find(ins, bytecode.LOADSCOPE)
		// inner break, inner back edge, outer break, outer back edge
		if len(breaks) != 4 || len(loads) != 2 {
			t.Fatalf("got %d BREAK and %d LOADSCOPE", len(breaks), len(loads))
		}
		if breaks[0].Target() != int64(loads[0].Next()) {
			t.Errorf("inner break lands at %08X, want %08X", breaks[0].Target(), loads[0].Next())
		}
		if breaks[2].Target() != int64(len(code)) {
			t.Errorf("outer break lands at %08X, want %08X", breaks[2].Target(), len(code))
		}
	})
}

func TestJumpWidths(t *testing.T) {
	// each assignment is 14 bytes, enough of them overflow a 16-bit offset
	big := "if (x) {" + strings.Repeat("y = 1;", 0x8000/14+1) + "}"
	_, ins := compile(t, big)
	if len(find(ins, bytecode.JLIF)) != 1 || len(find(ins, bytecode.JSIF)) != 0 {
		t.Errorf("large then block should use JLIF")
	}

	bigElse := "if (x) y = 1; else {" + strings.Repeat("y = 1;", 0x8000/14+1) + "}"
	_, ins = compile(t, bigElse)
	if len(find(ins, bytecode.JL)) != 1 || len(find(ins, bytecode.JSIF)) != 1 {
		t.Errorf("large else block should use JL with a short JSIF")
	}

	var ch chunk
	if err := ch.forward(bytecode.JS, bytecode.JL, 0x8000-4); err != nil {
		t.Fatal(err)
	}
	if err := ch.forward(bytecode.JS, bytecode.JL, 0x8000-3); err != nil {
		t.Fatal(err)
	}
	got, err := bytecode.DecodeAll(ch.code)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Op != bytecode.JS || got[0].Jump != 0x7FFF {
		t.Errorf("widest short jump: %v", got[0])
	}
	if got[1].Op != bytecode.JL || got[1].Jump != 0x8000+6 {
		t.Errorf("narrowest long jump: %v", got[1])
	}

	ch = chunk{code: make([]byte, 0x8000)}
	ch.backward(bytecode.JS, bytecode.JL, 0)
	ch.backward(bytecode.JS, bytecode.JL, 0)
	short, _ := bytecode.Decode(ch.code, 0x8000)
	long, _ := bytecode.Decode(ch.code, 0x8003)
	if short.Op != bytecode.JS || short.Jump != -0x8000 {
		t.Errorf("backward short: %v", short)
	}
	if long.Op != bytecode.JL || long.Jump != -0x8003 {
		t.Errorf("backward long: %v", long)
	}
}

func TestCompileErrors(t *testing.T) {
	pos := lexer.NewPosition(1, 1, 0)
	seq := func(nodes ...*ast.Node) *ast.Node {
		n := ast.New(ast.KindSequence, "", pos)
		n.Children = nodes
		return n
	}
	stmt := func(call *ast.Node) *ast.Node {
		n := ast.New(ast.KindExprStmt, "", pos)
		n.Right = call
		return n
	}

	manyArgs := ast.New(ast.KindCall, "print", pos)
	for i := 0; i < 256; i++ {
		manyArgs.Children = append(manyArgs.Children, ast.New(ast.KindNumber, "1", pos))
	}
	nulText := ast.New(ast.KindCall, "print", pos)
	nulText.Children = []*ast.Node{ast.New(ast.KindText, "a\x00b", pos)}
	badNumber := ast.New(ast.KindCall, "print", pos)
	badNumber.Children = []*ast.Node{ast.New(ast.KindNumber, "1.2.3", pos)}

	tests := []struct {
		name string
		root func(t *testing.T) *ast.Node
		want error
	}{
		{"break outside loop", parsed("break;"), ErrLoopControl},
		{"continue outside loop", parsed("if (1) continue;"), ErrLoopControl},
		{"break in for post", parsed("while (1) for(;;{break;}) ;"), ErrLoopControl},
		{"too many args", func(*testing.T) *ast.Node { return seq(stmt(manyArgs)) }, ErrTooManyArgs},
		{"NUL in text", func(*testing.T) *ast.Node { return seq(stmt(nulText)) }, ErrNulByte},
		{"bad number", func(*testing.T) *ast.Node { return seq(stmt(badNumber)) }, ErrBadNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.root(t))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Errorf("error %v carries no position", err)
			}
		})
	}
}

func TestInternalErrors(t *testing.T) {
	pos := lexer.NewPosition(1, 1, 0)
	lonelyIf := ast.New(ast.KindIf, "", pos)
	lonelyIf.Children = []*ast.Node{ast.New(ast.KindNumber, "1", pos)}

	tests := []struct {
		name string
		root *ast.Node
	}{
		{"if with one child", lonelyIf},
		{"unknown kind", ast.New(ast.KindInvalid, "", pos)},
		{"binary without operands", ast.New(ast.KindBinary, "+", pos)},
		{"unknown operator", &ast.Node{Kind: ast.KindUnary, Text: "~", Right: ast.New(ast.KindNumber, "1", pos)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if _, ok := r.(*InternalError); !ok {
					t.Errorf("recovered %v, want *InternalError", r)
				}
			}()
			Compile(tt.root)
		})
	}
}

func parsed(src string) func(t *testing.T) *ast.Node {
	return func(t *testing.T) *ast.Node {
		root, err := parser.Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		return root
	}
}

func TestForwardJumpTooFar(t *testing.T) {
	var ch chunk
	if err := ch.forward(bytecode.JS, bytecode.JL, math.MaxInt64); !errors.Is(err, ErrJumpTooFar) {
		t.Errorf("got %v, want ErrJumpTooFar", err)
	}
	if err := ch.forward(bytecode.JS, bytecode.JL, math.MaxInt64-bytecode.LongJumpSize+1); !errors.Is(err, ErrJumpTooFar) {
		t.Errorf("got %v, want ErrJumpTooFar", err)
	}
	if len(ch.code) != 0 {
		t.Errorf("failed jumps emitted %d bytes", len(ch.code))
	}

	if err := ch.forward(bytecode.JS, bytecode.JL, math.MaxInt64-bytecode.LongJumpSize); err != nil {
		t.Fatalf("widest long jump: %v", err)
	}
	in, err := bytecode.Decode(ch.code, 0)
	if err != nil {
		t.Fatal(err)
	}
	if in.Op != bytecode.JL || in.Jump != math.MaxInt64 {
		t.Errorf("widest long jump: %v", in)
	}
}

func TestNumberLiterals(t *testing.T) {
	_, ins := compile(t, "print(1e400); print(2.5e-3);")
	push := find(ins, bytecode.PUSHVAL)
	if len(push) != 2 {
		t.Fatalf("got %d PUSHVAL", len(push))
	}
	if !math.IsInf(push[0].Number, 1) {
		t.Errorf("1e400 = %v, want +Inf", push[0].Number)
	}
	if push[1].Number != 0.0025 {
		t.Errorf("2.5e-3 = %v", push[1].Number)
	}
}
