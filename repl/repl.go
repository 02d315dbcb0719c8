// Package repl implements the Read-Eval-Print Loop for PL/0.
//
// Unlike Monkey, PL/0 has no expression-level "result" to print after
// each line — a program is a single block terminated by ".", and its
// only output is whatever its own write statements produce, possibly
// interleaved with read statements that block for input mid-run. The
// REPL therefore accumulates source until a trailing "." closes the
// block, compiles it, and runs the VM in the background, using the
// bubbletea program's own message channel to ferry read prompts and
// write lines back to the UI while the machine is still executing —
// the same Charm stack (bubbles/textinput, bubbles/spinner,
// bubbles/viewport, lipgloss) and async tea.Cmd pattern the teacher's
// REPL uses for evaluation,
// adapted here to a run that can pause mid-flight for input instead
// of completing in one shot.
package repl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dr8co/pl0/compiler"
	"github.com/dr8co/pl0/lexer"
	"github.com/dr8co/pl0/vm"
)

const (
	// Prompt is shown while accumulating a fresh block.
	Prompt = "pl0> "

	// ContPrompt is shown on every line after the first, until the
	// block's closing ".".
	ContPrompt = " ... "

	// ReadPrompt is shown once the running program blocks on a read
	// statement.
	ReadPrompt = "read> "
)

// Options configures the REPL's display.
type Options struct {
	NoColor bool // Disable styled output.
	Debug   bool // Print compile/run timings to stderr-equivalent history lines.
}

// Start runs the REPL until the user quits.
func Start(options Options) {
	m := initialModel(options)
	p := tea.NewProgram(m)
	m.program = p
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running REPL:", err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	runtimeErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8700")).
				Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")).
			Italic(true)
)

// historyKind distinguishes one rendered history line from another.
type historyKind int

const (
	kindSource historyKind = iota
	kindOutput
	kindError
	kindRuntimeError
	kindInfo
)

type historyLine struct {
	kind historyKind
	text string
}

// runHandle is how the model reaches a run in progress: the answers
// channel the VM's reader blocks on and the UI's Enter key feeds, and
// the done channel that receives the run's result once the VM returns.
type runHandle struct {
	answers chan int64
	done    chan runResult
}

type runResult struct {
	err      error
	elapsed  time.Duration
	compiled time.Duration
}

// needInputMsg is sent (via the bubbletea program's own Send, from
// the goroutine running the VM) when the program blocks on a read
// statement.
type needInputMsg struct{}

// wroteLineMsg carries one write statement's output back to the UI as
// soon as it happens, so output appears incrementally rather than all
// at once when the run finishes.
type wroteLineMsg struct{ value int64 }

// runDoneMsg is sent once the VM returns, successfully or not.
type runDoneMsg struct{ result runResult }

// teaReader and teaWriter adapt pl0io.Reader/pl0io.Writer to the
// bubbletea message loop: every call is relayed to the UI goroutine
// via Program.Send, and ReadInt blocks on an answer channel the UI
// feeds from the next line the user types.
type teaReader struct {
	send    func(tea.Msg)
	answers chan int64
}

func (r *teaReader) ReadInt() (int64, error) {
	r.send(needInputMsg{})
	v := <-r.answers
	return v, nil
}

type teaWriter struct {
	send func(tea.Msg)
}

func (w *teaWriter) WriteInt(v int64) error {
	w.send(wroteLineMsg{value: v})
	return nil
}

// historyHeight is the viewport's height before the first
// tea.WindowSizeMsg arrives and resizes it to the real terminal.
const historyHeight = 20

type model struct {
	textInput   textinput.Model
	spinner     spinner.Model
	historyView viewport.Model
	history     []historyLine
	options     Options

	buffer     strings.Builder
	lines      int
	running    bool
	awaitInput bool
	run        *runHandle

	program *tea.Program
}

func initialModel(options Options) *model {
	ti := textinput.New()
	ti.Placeholder = "const max = 10;"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	vp := viewport.New(80, historyHeight)

	return &model{
		textInput:   ti,
		spinner:     s,
		historyView: vp,
		options:     options,
	}
}

// renderHistory re-renders the full scrollback as the viewport's
// content; called every time a line is appended so the pane always
// reflects the latest history before GotoBottom scrolls to it.
func (m *model) renderHistory() string {
	var s strings.Builder
	for i, line := range m.history {
		if i > 0 {
			s.WriteString("\n")
		}
		switch line.kind {
		case kindSource:
			s.WriteString(m.style(historyStyle, line.text))
		case kindOutput:
			s.WriteString(m.style(outputStyle, line.text))
		case kindError:
			s.WriteString(m.style(errorStyle, line.text))
		case kindRuntimeError:
			s.WriteString(m.style(runtimeErrorStyle, line.text))
		case kindInfo:
			s.WriteString(m.style(infoStyle, line.text))
		}
	}
	return s.String()
}

// pushHistory appends a line and scrolls the viewport to show it.
func (m *model) pushHistory(line historyLine) {
	m.history = append(m.history, line)
	m.historyView.SetContent(m.renderHistory())
	m.historyView.GotoBottom()
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// endsBlock reports whether the accumulated source now contains a
// top-level "." terminator, i.e. the block is ready to compile. PL0
// has no use of "." outside the final terminator, so a plain
// substring scan is sufficient here, unlike the teacher's bracket
// balancer which has to ignore brackets that appear inside comments
// or strings (PL0 has no string literals to worry about either).
func endsBlock(src string) bool {
	return strings.Contains(src, ".")
}

// runCmd launches the compile-then-execute pipeline in the
// background and returns immediately; the goroutine reports back via
// program.Send using the message types above.
func runCmd(program *tea.Program, source string, run *runHandle) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			l := lexer.New(source)
			c := compiler.New(l)
			prog, err := c.Compile()
			compiled := time.Since(start)
			if err != nil {
				run.done <- runResult{err: err, compiled: compiled}
				return
			}

			reader := &teaReader{send: program.Send, answers: run.answers}
			writer := &teaWriter{send: program.Send}
			m := vm.New(prog.Instructions, reader, writer)

			runStart := time.Now()
			err = m.Run()
			run.done <- runResult{err: err, compiled: compiled, elapsed: time.Since(runStart)}
		}()
		return waitForDone(run)()
	}
}

// waitForDone blocks on the run's done channel and converts it to a
// tea.Msg; Update re-issues this command each time a wroteLineMsg
// arrives mid-run and after it hands a read answer to the VM.
func waitForDone(run *runHandle) tea.Cmd {
	return func() tea.Msg {
		return runDoneMsg{result: <-run.done}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.textInput.Width = msg.Width - len(Prompt) - 1
		m.historyView.Width = msg.Width
		m.historyView.Height = msg.Height - lipgloss.Height(titleStyle.Render(" PL/0 ")) - 3
		m.historyView.SetContent(m.renderHistory())
		m.historyView.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case needInputMsg:
		m.awaitInput = true
		m.textInput.SetValue("")
		m.textInput.Prompt = promptStyle.Render(ReadPrompt)
		return m, nil

	case wroteLineMsg:
		m.pushHistory(historyLine{kind: kindOutput, text: strconv.FormatInt(msg.value, 10)})
		return m, waitForDone(m.run)

	case runDoneMsg:
		m.running = false
		m.awaitInput = false
		m.textInput.Prompt = promptStyle.Render(Prompt)
		res := msg.result
		if res.err != nil {
			kind := kindError
			if _, ok := res.err.(*vm.RuntimeError); ok {
				kind = kindRuntimeError
			}
			m.pushHistory(historyLine{kind: kind, text: res.err.Error()})
		} else if m.options.Debug {
			m.pushHistory(historyLine{
				kind: kindInfo,
				text: fmt.Sprintf("compiled in %v, ran in %v", res.compiled, res.elapsed),
			})
		}
		m.run = nil
		return m, nil

	case tea.KeyMsg:
		if m.running && !m.awaitInput {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit

		case tea.KeyEnter:
			input := m.textInput.Value()
			m.textInput.SetValue("")

			if m.awaitInput {
				v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
				if err != nil {
					m.pushHistory(historyLine{kind: kindError, text: fmt.Sprintf("malformed integer %q, try again", input)})
					return m, nil
				}
				m.pushHistory(historyLine{kind: kindSource, text: input})
				m.awaitInput = false
				m.textInput.Prompt = promptStyle.Render(Prompt)
				m.run.answers <- v
				return m, waitForDone(m.run)
			}

			m.pushHistory(historyLine{kind: kindSource, text: input})
			if m.lines > 0 {
				m.buffer.WriteString("\n")
			}
			m.buffer.WriteString(input)
			m.lines++

			if !endsBlock(m.buffer.String()) {
				m.textInput.Prompt = promptStyle.Render(ContPrompt)
				return m, nil
			}

			source := m.buffer.String()
			m.buffer.Reset()
			m.lines = 0
			m.textInput.Prompt = promptStyle.Render(Prompt)

			m.running = true
			run := &runHandle{answers: make(chan int64), done: make(chan runResult, 1)}
			m.run = run
			return m, runCmd(m.program, source, run)
		}
	}

	if !m.running || m.awaitInput {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.running {
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m *model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" PL/0 "))
	s.WriteString("\n\n")

	s.WriteString(m.historyView.View())
	s.WriteString("\n")

	if m.running {
		s.WriteString(m.spinner.View())
		s.WriteString(" running\n")
	}

	s.WriteString(m.textInput.View())
	s.WriteString("\n")
	return s.String()
}

func (m *model) style(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}
