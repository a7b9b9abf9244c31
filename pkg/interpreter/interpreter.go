package interpreter

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"gmlite/pkg/bytecode"
)

// Interpreter executes bytecode produced by codegen
type Interpreter struct {
	state    *State    // main program state
	registry *Registry // instances reachable from the program

	out    io.Writer   // output writer for print
	logger *log.Logger // debug output for builtins and tracing
	trace  bool        // log every decoded instruction

	builtins map[string]builtin

	maxSteps int   // maximum steps (0 = unlimited)
	steps    int   // steps executed
	err      error // script error that halted the program
}

type Option func(*Interpreter)

// WithWriter sets the output writer for print statements
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of interpreter steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithRegistry shares an instance registry with other interpreters
func WithRegistry(r *Registry) Option {
	return func(i *Interpreter) { i.registry = r }
}

// WithLogger sets the logger used for debug output
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithTrace logs each instruction at debug level before it executes
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

// NewInterpreter creates a new Interpreter instance
func NewInterpreter(code []byte, opts ...Option) *Interpreter {
	it := &Interpreter{
		state:    newState(append([]byte(nil), code...)),
		builtins: defaultBuiltins(),
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}
	if it.logger == nil {
		it.logger = log.Default()
	}
	if it.registry == nil {
		it.registry = NewRegistry()
	}

	return it
}

// Load replaces the program with new code and resets the execution state.
// The registry is kept.
func (i *Interpreter) Load(code []byte) {
	i.state.code = append([]byte(nil), code...)
	i.Reset()
}

// Reset restarts the program from the beginning with a single empty scope
func (i *Interpreter) Reset() {
	i.state = newState(i.state.code)
	i.steps = 0
	i.err = nil
}

// State returns the main program state
func (i *Interpreter) State() *State {
	return i.state
}

// Registry returns the instance registry
func (i *Interpreter) Registry() *Registry {
	return i.registry
}

// Steps returns the number of instructions executed since the last reset
func (i *Interpreter) Steps() int {
	return i.steps
}

// Step executes a single instruction, returning (halted, error).
// Once a script error is returned, every further Step returns it again.
func (i *Interpreter) Step() (bool, error) {
	if i.err != nil {
		return true, i.err
	}

	s := i.state
	if s.pc == len(s.code) {
		return true, nil
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return i.halt(s.pc, ErrMaxStepsExceeded)
	}

	in := i.decode()
	if i.trace {
		i.logger.Debug("step", "ins", in.String(), "depth", s.Depth(), "saved", s.SavedDepths())
	}

	i.steps++
	s.pc = in.Next()
	if err := i.exec(in); err != nil {
		s.pc = in.Offset
		return i.halt(in.Offset, err)
	}

	return s.pc == len(s.code), nil
}

// Run executes until halt or error
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

func (i *Interpreter) halt(pc int, err error) (bool, error) {
	rerr := &RuntimeError{PC: pc, Err: err}
	if pc < len(i.state.code) {
		rerr.Op = bytecode.Op(i.state.code[pc])
	}

	i.err = rerr
	return true, rerr
}
