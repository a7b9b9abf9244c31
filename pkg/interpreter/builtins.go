package interpreter

import (
	"fmt"
)

// builtin receives its arguments in call order and returns the value to push
type builtin func(i *Interpreter, args []Value) (Value, error)

func defaultBuiltins() map[string]builtin {
	return map[string]builtin{
		"print":           builtinPrint,
		"instance_create": builtinInstanceCreate,
	}
}

// call pops argc values and invokes the named builtin
func (i *Interpreter) call(name string, argc int) error {
	fn, ok := i.builtins[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	values := i.state.current().values
	if values.Size() < argc {
		return fmt.Errorf("%w: %s needs %d, have %d", ErrStackUnderflow, name, argc, values.Size())
	}

	args := make([]Value, argc)
	for k := argc - 1; k >= 0; k-- {
		args[k], _ = values.Pop()
	}

	result, err := fn(i, args)
	if err != nil {
		return err
	}
	i.state.push(result)
	return nil
}

// print(value) writes the value on its own line and returns 0
func builtinPrint(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: print takes 1, got %d", ErrArity, len(args))
	}

	if _, err := fmt.Fprintln(i.out, args[0].String()); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	i.logger.Debug("print", "kind", args[0].Kind())
	return Number(0), nil
}

// instance_create(x, y, object_id) registers a new instance and returns its id
func builtinInstanceCreate(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%w: instance_create takes 3, got %d", ErrArity, len(args))
	}

	var n [3]Number
	for k, a := range args {
		v, ok := a.(Number)
		if !ok {
			return nil, fmt.Errorf("%w: instance_create argument %d is %s", ErrTypeMismatch, k+1, a.Kind())
		}
		n[k] = v
	}

	id := i.registry.Create(n[0], n[1], n[2])
	i.logger.Debug("instance created", "id", id, "object_id", n[2], "instances", i.registry.Len())
	return Number(id), nil
}
