package codegen

import (
	"github.com/charmbracelet/log"

	"gmlite/pkg/ast"
	"gmlite/pkg/bytecode"
)

// scoped compiles n as OPENSCOPE n EXITSCOPE. A block body is not wrapped twice.
func (c *Codegen) scoped(n *ast.Node) (*chunk, error) {
	ch, err := c.opened(n)
	if err != nil {
		return nil, err
	}

	ch.op(bytecode.EXITSCOPE)
	return ch, nil
}

// opened compiles n as OPENSCOPE n, leaving the scope for the caller to close
func (c *Codegen) opened(n *ast.Node) (*chunk, error) {
	ch := &chunk{}
	ch.op(bytecode.OPENSCOPE)

	var err error
	if n.Kind == ast.KindBlock {
		err = c.emitAll(ch, n.Children)
	} else {
		err = c.emit(ch, n)
	}
	if err != nil {
		return nil, err
	}

	return ch, nil
}

// loopBody compiles a loop body. Its break and continue sites are left for the caller to patch.
func (c *Codegen) loopBody(n *ast.Node, closed bool) (*chunk, error) {
	c.loops++
	defer func() { c.loops-- }()

	if closed {
		return c.scoped(n)
	}
	return c.opened(n)
}

// ifStatement lowers to
//
//	cond TRUTH J?IF(over then) OPENSCOPE then EXITSCOPE [J?(over else)] [OPENSCOPE else EXITSCOPE]
func (c *Codegen) ifStatement(ch *chunk, n *ast.Node) error {
	if len(n.Children) != 2 && len(n.Children) != 3 {
		panic(internalf("if with %d children at %s", len(n.Children), n.Pos))
	}

	if err := c.emit(ch, n.Children[0]); err != nil {
		return err
	}
	ch.op(bytecode.TRUTH)

	then, err := c.scoped(n.Children[1])
	if err != nil {
		return err
	}

	var otherwise *chunk
	if len(n.Children) == 3 {
		if otherwise, err = c.scoped(n.Children[2]); err != nil {
			return err
		}
		if err := then.forward(bytecode.JS, bytecode.JL, len(otherwise.code)); err != nil {
			return &Error{Pos: n.Pos, Err: err}
		}
	}

	if err := ch.forward(bytecode.JSIF, bytecode.JLIF, len(then.code)); err != nil {
		return &Error{Pos: n.Pos, Err: err}
	}
	ch.splice(then)
	if otherwise != nil {
		ch.splice(otherwise)
	}

	return nil
}

// whileStatement lowers to
//
//	start: SAVESCOPE cond TRUTH JLIF(exit) OPENSCOPE body BREAK(start) exit: LOADSCOPE end:
//
// The back edge is a BREAK, which unwinds the body scopes and drops the saved depth
// before SAVESCOPE pushes it again.
// A break jumps to end, past LOADSCOPE, because BREAK has already popped the depth.
// A continue jumps to start.
func (c *Codegen) whileStatement(ch *chunk, n *ast.Node) error {
	if len(n.Children) != 2 {
		panic(internalf("while with %d children at %s", len(n.Children), n.Pos))
	}

	w := &chunk{}
	w.op(bytecode.SAVESCOPE)
	if err := c.emit(w, n.Children[0]); err != nil {
		return err
	}
	w.op(bytecode.TRUTH)

	exitJump := len(w.code)
	w.code = bytecode.AppendInt64(bytecode.AppendOp(w.code, bytecode.JLIF), 0)

	body, err := c.loopBody(n.Children[1], false)
	if err != nil {
		return err
	}
	bodyAt := len(w.code)
	w.code = append(w.code, body.code...)

	w.code = bytecode.AppendInt64(bytecode.AppendOp(w.code, bytecode.BREAK), int64(-len(w.code)))
	exit := len(w.code)
	w.op(bytecode.LOADSCOPE)
	end := len(w.code)

	w.patch(exitJump, exit)
	for _, at := range body.breaks {
		w.patch(bodyAt+at, end)
	}
	for _, at := range body.continues {
		w.patch(bodyAt+at, 0)
	}

	log.Debug("lowered while", "pos", n.Pos, "bytes", len(w.code), "breaks", len(body.breaks), "continues", len(body.continues))
	ch.splice(w)
	return nil
}

// forStatement lowers to
//
//	OPENSCOPE init J?(over post) post: post cond TRUTH JLIF(end)
//	SAVESCOPE OPENSCOPE body EXITSCOPE LOADSCOPE J?(post) end: EXITSCOPE
//
// The post clause runs before every condition test except the first.
// A break jumps to end and a continue jumps to post.
func (c *Codegen) forStatement(ch *chunk, n *ast.Node) error {
	if len(n.Children) != 4 {
		panic(internalf("for with %d children at %s", len(n.Children), n.Pos))
	}

	f := &chunk{}
	f.op(bytecode.OPENSCOPE)
	if err := c.emit(f, n.Children[0]); err != nil {
		return err
	}

	// the post clause is outside the body, so loop control there refers to no loop of its own
	post := &chunk{}
	loops := c.loops
	c.loops = 0
	err := c.emit(post, n.Children[2])
	c.loops = loops
	if err != nil {
		return err
	}

	if err := f.forward(bytecode.JS, bytecode.JL, len(post.code)); err != nil {
		return &Error{Pos: n.Pos, Err: err}
	}
	postAt := len(f.code)
	f.code = append(f.code, post.code...)

	if err := c.emit(f, n.Children[1]); err != nil {
		return err
	}
	f.op(bytecode.TRUTH)
	exitJump := len(f.code)
	f.code = bytecode.AppendInt64(bytecode.AppendOp(f.code, bytecode.JLIF), 0)

	body, err := c.loopBody(n.Children[3], true)
	if err != nil {
		return err
	}
	f.op(bytecode.SAVESCOPE)
	bodyAt := len(f.code)
	f.code = append(f.code, body.code...)
	f.op(bytecode.LOADSCOPE)
	f.backward(bytecode.JS, bytecode.JL, postAt)

	end := len(f.code)
	f.op(bytecode.EXITSCOPE)

	f.patch(exitJump, end)
	for _, at := range body.breaks {
		f.patch(bodyAt+at, end)
	}
	for _, at := range body.continues {
		f.patch(bodyAt+at, postAt)
	}

	log.Debug("lowered for", "pos", n.Pos, "bytes", len(f.code), "breaks", len(body.breaks), "continues", len(body.continues))
	ch.splice(f)
	return nil
}
