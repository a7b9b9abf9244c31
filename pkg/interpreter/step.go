package interpreter

import (
	"fmt"

	"gmlite/pkg/bytecode"
)

// decode reads the instruction at pc. Bytecode that cannot be decoded is an internal error.
func (i *Interpreter) decode() bytecode.Instruction {
	s := i.state
	in, err := bytecode.Decode(s.code, s.pc)
	if err != nil {
		panic(&InternalError{PC: s.pc, Msg: err.Error()})
	}
	return in
}

// exec carries out one instruction. pc already points past it.
func (i *Interpreter) exec(in bytecode.Instruction) error {
	s := i.state

	switch in.Op {
	case bytecode.NOP:
		return nil

	case bytecode.PUSHVAL:
		s.push(Number(in.Number))
		return nil

	case bytecode.PUSHTEXT:
		s.push(Text(in.Text))
		return nil

	case bytecode.PUSHVAR:
		v, ok := s.Lookup(in.Text)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUndeclared, in.Text)
		}
		s.push(v)
		return nil

	case bytecode.POP:
		_, err := s.pop()
		return err

	case bytecode.DECLARE:
		return s.declare(in.Text, Number(0))

	case bytecode.DECLSET:
		v, err := s.pop()
		if err != nil {
			return err
		}
		return s.declare(in.Text, v)

	case bytecode.BINOP:
		r, err := s.pop()
		if err != nil {
			return err
		}
		l, err := s.pop()
		if err != nil {
			return err
		}
		v, err := binary(bytecode.BinaryOp(in.Sub), l, r)
		if err != nil {
			return err
		}
		s.push(v)
		return nil

	case bytecode.UNOP:
		v, err := s.pop()
		if err != nil {
			return err
		}
		if v, err = unary(bytecode.UnaryOp(in.Sub), v); err != nil {
			return err
		}
		s.push(v)
		return nil

	case bytecode.DIRECT:
		s.target = &lvalue{name: in.Text}
		return nil

	case bytecode.INDIRECT:
		id, err := i.popInstance()
		if err != nil {
			return err
		}
		s.target = &lvalue{name: in.Text, instance: id, remote: true}
		return nil

	case bytecode.INDEXP:
		id, err := i.popInstance()
		if err != nil {
			return err
		}
		v, err := i.registry.Field(id, in.Text)
		if err != nil {
			return err
		}
		s.push(v)
		return nil

	case bytecode.BINAS:
		v, err := s.pop()
		if err != nil {
			return err
		}
		return i.mutate(func(cur Value) (Value, error) {
			return assign(bytecode.AssignOp(in.Sub), cur, v)
		})

	case bytecode.UNAS:
		return i.mutate(func(cur Value) (Value, error) {
			return step(bytecode.StepOp(in.Sub), cur)
		})

	case bytecode.TRUTH:
		v, err := s.pop()
		if err != nil {
			return err
		}
		n, ok := v.(Number)
		if !ok {
			return ErrTruthOfText
		}
		s.truth = n.Truthy()
		return nil

	case bytecode.OPENSCOPE:
		s.openScope()
		return nil

	case bytecode.EXITSCOPE:
		s.exitScope()
		return nil

	case bytecode.SAVESCOPE:
		s.saveScope()
		return nil

	case bytecode.LOADSCOPE:
		s.loadScope()
		return nil

	case bytecode.BREAK:
		s.loadScope()
		i.jump(in)
		return nil

	case bytecode.JS, bytecode.JL:
		i.jump(in)
		return nil

	case bytecode.JSIT, bytecode.JLIT:
		if s.truth {
			i.jump(in)
		}
		return nil

	case bytecode.JSIF, bytecode.JLIF:
		if !s.truth {
			i.jump(in)
		}
		return nil

	case bytecode.CALL:
		return i.call(in.Text, in.Argc)

	case bytecode.FUNCDEF, bytecode.RETURN:
		return fmt.Errorf("%w: %s", ErrUnimplemented, in.Op)
	}

	panic(&InternalError{PC: in.Offset, Msg: "unhandled opcode " + in.Op.String()})
}

func (i *Interpreter) jump(in bytecode.Instruction) {
	target := in.Target()
	if target < 0 || target > int64(len(i.state.code)) {
		panic(&InternalError{PC: in.Offset, Msg: fmt.Sprintf("jump to %d outside of %d bytes", target, len(i.state.code))})
	}
	i.state.pc = int(target)
}

// popInstance pops an instance id and checks that the instance exists
func (i *Interpreter) popInstance() (int64, error) {
	v, err := i.state.pop()
	if err != nil {
		return 0, err
	}

	id, err := instanceID(v)
	if err != nil {
		return 0, err
	}
	if _, ok := i.registry.Lookup(id); !ok {
		return 0, fmt.Errorf("%w: %d", ErrNoInstance, id)
	}
	return id, nil
}

// mutate consumes the pending lvalue and replaces the value in its cell with apply's result
func (i *Interpreter) mutate(apply func(cur Value) (Value, error)) error {
	s := i.state
	t := s.target
	s.target = nil
	if t == nil {
		return ErrNoLvalue
	}

	owner := s
	if t.remote {
		inst, ok := i.registry.Lookup(t.instance)
		if !ok {
			return fmt.Errorf("%w: %d", ErrNoInstance, t.instance)
		}
		owner = inst
	}

	sc, ok := owner.resolve(t.name)
	if !ok {
		if t.remote {
			return fmt.Errorf("%w: %d.%s", ErrNoField, t.instance, t.name)
		}
		return fmt.Errorf("%w: %s", ErrUndeclared, t.name)
	}

	v, err := apply(sc.vars[t.name])
	if err != nil {
		return err
	}
	sc.vars[t.name] = v
	return nil
}
