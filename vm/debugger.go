package vm

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"goil/il"
	"goil/mem"
)

type model struct {
	vm   *Vm
	last il.Instruction
	err  error
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (m model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			inst, err := m.vm.Step()
			m.last = inst
			if err != nil {
				m.err = err
				return m, tea.Quit
			}

		case "s":
			if err := m.vm.Scan(); err != nil {
				m.err = err
				return m, tea.Quit
			}

		case "t":
			m.vm.Tick(1)
		}
	}
	return m, nil
}

// renderBank renders one memory bank as a hex line.
func renderBank(name string, a []byte) string {
	s := fmt.Sprintf("%s | ", name)
	for _, b := range a {
		s += fmt.Sprintf("%02x ", b)
	}
	return s
}

func (m model) bankTable() string {
	header := "  | "
	for i := 0; i < mem.InputSize; i++ {
		header += fmt.Sprintf("%2d ", i)
	}
	return strings.Join([]string{
		header,
		renderBank("I", m.vm.Mem.Inputs[:]),
		renderBank("Q", m.vm.Mem.Outputs[:]),
		renderBank("M", m.vm.Mem.Memories[:]),
	}, "\n")
}

func (m model) status() string {
	return fmt.Sprintf(`
 pos: %04x
 acc: %d
tick: %d
nest: %d
`,
		m.vm.pos,
		m.vm.Mem.Accumulator,
		m.vm.ticks,
		m.vm.stack.depth(),
	)
}

// listing renders the disassembly with the next instruction highlighted.
func (m model) listing() string {
	var lines []string
	body := m.vm.program[:m.vm.size]
	for pos := il.HeaderSize; pos < m.vm.size; {
		inst, next, err := il.Decode(body, pos)
		if err != nil {
			lines = append(lines, err.Error())
			break
		}
		marker := "  "
		if pos == m.vm.pos {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%04x  %s", marker, pos, inst.Format(body)))
		pos = next
	}
	return strings.Join(lines, "\n")
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.bankTable(),
			m.status(),
		),
		"",
		m.listing(),
		"",
		spew.Sdump(m.last),
		"space/j step · s scan · t tick · q quit",
	)
}

// Debug starts an interactive stepper over the loaded program.
func (v *Vm) Debug() error {
	m, err := tea.NewProgram(model{vm: v}).Run()
	if err != nil {
		return err
	}
	if x := m.(model); x.err != nil {
		return x.err
	}
	return nil
}
