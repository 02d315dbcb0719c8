// Package vm implements the PL/0 stack machine: fetch-decode-execute
// over a fixed instruction buffer, with activation frames linked by
// dynamic and static chains (spec §4.5).
//
// The dispatch loop and per-opcode semantics are written fresh in the
// teacher's documented style — exported Frame/Machine naming,
// doc-comment density, fmt.Errorf-free but error-returning faults —
// since the teacher's own vm/vm.go dispatch loop wasn't present in
// the retrieved reference pack; only vm/frame.go and the calling
// convention visible from its compiler/main packages survived
// retrieval (see DESIGN.md).
package vm

import (
	"github.com/dr8co/pl0/code"
	"github.com/dr8co/pl0/pl0io"
)

// Machine executes a compiled PL/0 instruction buffer against a
// line-oriented integer input/output channel.
type Machine struct {
	instructions []code.Instruction
	pc           int
	top          *Frame

	in  pl0io.Reader
	out pl0io.Writer

	lastWritten int64
	everWritten bool
}

// New creates a Machine over instructions, reading read operands from
// in and sending write operands to out.
func New(instructions []code.Instruction, in pl0io.Reader, out pl0io.Writer) *Machine {
	return &Machine{instructions: instructions, in: in, out: out}
}

// LastWritten returns the most recent value written by the program
// and whether write was ever executed. It exists for debug/REPL
// tooling that wants to echo a result the way an expression-oriented
// language's last-value-on-the-stack would, even though PL/0 has no
// such concept at the language level.
func (m *Machine) LastWritten() (int64, bool) {
	return m.lastWritten, m.everWritten
}

// Run executes from instruction 0 until the outermost frame returns
// or a fault occurs.
//
// The initial frame is the program's own main-block frame: its
// ReturnAddr is set past the end of the instruction buffer so that
// the block's own RET, once it pops this frame's DynamicLink (nil),
// causes the loop to halt on the next iteration — no separate
// synthetic "outer" frame is needed.
func (m *Machine) Run() error {
	m.pc = 0
	m.top = NewFrame(nil, nil, len(m.instructions))

	for m.pc < len(m.instructions) && m.top != nil {
		ins := m.instructions[m.pc]
		pc := m.pc
		m.pc++

		switch ins.Op {
		case code.LIT:
			m.top.push(int64(ins.Addr))

		case code.LOD:
			frame, err := m.frameAt(pc, ins.Level)
			if err != nil {
				return err
			}
			if ins.Addr < 0 || ins.Addr >= len(frame.Locals) {
				return &RuntimeError{PC: pc, Msg: "local index out of range"}
			}
			m.top.push(frame.Locals[ins.Addr])

		case code.STO:
			frame, err := m.frameAt(pc, ins.Level)
			if err != nil {
				return err
			}
			v, ok := m.top.pop()
			if !ok {
				return &RuntimeError{PC: pc, Msg: "stack underflow"}
			}
			if ins.Addr < 0 || ins.Addr >= len(frame.Locals) {
				return &RuntimeError{PC: pc, Msg: "local index out of range"}
			}
			frame.Locals[ins.Addr] = v

		case code.CAL:
			staticParent, err := m.frameAt(pc, ins.Level)
			if err != nil {
				return err
			}
			m.top = NewFrame(m.top, staticParent, m.pc)
			m.pc = ins.Addr

		case code.INT:
			size := ins.Addr - 3
			if size < 0 {
				return &RuntimeError{PC: pc, Msg: "negative frame size"}
			}
			m.top.Locals = make([]int64, size)

		case code.JMP:
			m.pc = ins.Addr

		case code.JPC:
			v, ok := m.top.pop()
			if !ok {
				return &RuntimeError{PC: pc, Msg: "stack underflow"}
			}
			if v == 0 {
				m.pc = ins.Addr
			}

		case code.OPR:
			if err := m.operator(pc, ins.Addr); err != nil {
				return err
			}

		default:
			return &RuntimeError{PC: pc, Msg: "unknown opcode"}
		}
	}

	return nil
}

// frameAt follows the static chain level hops from the current frame
// and returns the frame it lands on. Per spec invariant, level never
// exceeds the number of links actually available in a program this
// compiler produced; running out of links here means the compiler
// emitted a bad level, which is a RuntimeError per §7.
func (m *Machine) frameAt(pc, level int) (*Frame, error) {
	f := m.top
	for i := 0; i < level; i++ {
		if f.StaticLink == nil {
			return nil, &RuntimeError{PC: pc, Msg: "static chain exhausted"}
		}
		f = f.StaticLink
	}
	return f, nil
}

// operator dispatches one of the OPR codes (spec §3/§4.5).
func (m *Machine) operator(pc, opCode int) error {
	switch opCode {
	case code.RET:
		ret := m.top.ReturnAddr
		m.top = m.top.DynamicLink
		m.pc = ret
		return nil

	case code.ODD:
		v, ok := m.top.pop()
		if !ok {
			return &RuntimeError{PC: pc, Msg: "stack underflow"}
		}
		m.top.push(boolInt(v%2 != 0))
		return nil

	case code.READ:
		v, err := m.in.ReadInt()
		if err != nil {
			return &RuntimeError{PC: pc, Msg: "malformed read: " + err.Error()}
		}
		m.top.push(v)
		return nil

	case code.WRITE:
		v, ok := m.top.pop()
		if !ok {
			return &RuntimeError{PC: pc, Msg: "stack underflow"}
		}
		if err := m.out.WriteInt(v); err != nil {
			return &RuntimeError{PC: pc, Msg: "write failed: " + err.Error()}
		}
		m.lastWritten = v
		m.everWritten = true
		return nil
	}

	// Every remaining operator is binary: pop rhs then lhs, per spec §4.5.
	rhs, ok := m.top.pop()
	if !ok {
		return &RuntimeError{PC: pc, Msg: "stack underflow"}
	}
	lhs, ok := m.top.pop()
	if !ok {
		return &RuntimeError{PC: pc, Msg: "stack underflow"}
	}

	switch opCode {
	case code.ADD:
		m.top.push(lhs + rhs)
	case code.SUB:
		m.top.push(lhs - rhs)
	case code.MUL:
		m.top.push(lhs * rhs)
	case code.DIV:
		if rhs == 0 {
			return &RuntimeError{PC: pc, Msg: "division by zero"}
		}
		// Floor division: Go's / truncates, so round down an inexact
		// quotient whose operands have mixed signs.
		q := lhs / rhs
		if lhs%rhs != 0 && (lhs < 0) != (rhs < 0) {
			q--
		}
		m.top.push(q)
	case code.LT:
		m.top.push(boolInt(lhs < rhs))
	case code.LEQ:
		m.top.push(boolInt(lhs <= rhs))
	case code.GT:
		m.top.push(boolInt(lhs > rhs))
	case code.GEQ:
		m.top.push(boolInt(lhs >= rhs))
	case code.EQ:
		m.top.push(boolInt(lhs == rhs))
	case code.NEQ:
		m.top.push(boolInt(lhs != rhs))
	default:
		return &RuntimeError{PC: pc, Msg: "unknown operator code"}
	}
	return nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
