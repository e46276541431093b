package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/engine-bridge/class"
	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/handle"
	"github.com/wippyai/engine-bridge/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type action struct {
	name   string
	detail string
	prompt string
}

var actions = []action{
	{"construct", "new Counter(n)", "initial value"},
	{"add", "counter.add(n) on instance #idx", "index,amount"},
	{"value", "counter.value() on instance #idx", "index"},
	{"drop", "release instance #idx", "index"},
	{"schedule", "square n on the worker pool", "n"},
}

type modelState int

const (
	stateSelectAction modelState = iota
	stateInputArgs
	stateShowResult
)

// inspectModel drives the bridge from the TUI event loop. Every engine
// operation happens synchronously inside Update, so the event loop goroutine
// is the engine thread; the periodic tick drains task completions onto it.
type inspectModel struct {
	rt        *runtime.Runtime
	md        *class.BaseClassMetadata
	instances []*handle.Persistent
	completed []string

	state    modelState
	selected int
	input    textinput.Model
	result   string
	resErr   error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newInspectModel(workers int) (*inspectModel, error) {
	rt, err := runtime.New(runtime.WithWorkers(workers))
	if err != nil {
		return nil, err
	}
	md, err := defineCounter(rt)
	if err != nil {
		rt.Close(context.Background())
		return nil, err
	}
	return &inspectModel{rt: rt, md: md}, nil
}

func (m *inspectModel) Init() tea.Cmd {
	return tick()
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.rt.Instance().ProcessUntilIdle()
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				m.rt.Close(ctx)
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectAction && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectAction && m.selected < len(actions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectAction:
				m.input = textinput.New()
				m.input.Placeholder = actions[m.selected].prompt
				m.input.Prompt = actions[m.selected].name + " "
				m.input.Width = 30
				m.input.Focus()
				m.state = stateInputArgs

			case stateInputArgs:
				m.result, m.resErr = m.perform(actions[m.selected].name, m.input.Value())
				m.state = stateShowResult

			case stateShowResult:
				m.state = stateSelectAction
				m.result = ""
				m.resErr = nil
			}

		case "esc":
			if m.state != stateSelectAction {
				m.state = stateSelectAction
				m.result = ""
				m.resErr = nil
			}
		}
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) perform(name, raw string) (string, error) {
	nums, err := parseNums(raw)
	if err != nil {
		return "", err
	}
	arg := func(i int) float64 {
		if i < len(nums) {
			return nums[i]
		}
		return 0
	}

	switch name {
	case "construct":
		slot := handle.New()
		err := m.rt.WithScope(func(r *engine.Region) error {
			ctor, err := m.md.Constructor(r)
			if err != nil {
				return err
			}
			obj, err := engine.Construct(r, ctor, r.Number(arg(0)))
			if err != nil {
				return m.takeThrown(r, err)
			}
			return slot.Init(m.rt.Instance(), obj)
		})
		if err != nil {
			return "", err
		}
		m.instances = append(m.instances, slot)
		return fmt.Sprintf("instance #%d", len(m.instances)-1), nil

	case "add", "value":
		slot, err := m.instance(int(arg(0)))
		if err != nil {
			return "", err
		}
		var out float64
		err = m.rt.WithScope(func(r *engine.Region) error {
			obj, err := slot.Read(r)
			if err != nil {
				return err
			}
			if name == "add" {
				fn, err := engine.GetString(r, obj, []byte("add"))
				if err != nil {
					return err
				}
				if _, err := engine.Call(r, fn, obj, r.Number(arg(1))); err != nil {
					return m.takeThrown(r, err)
				}
			}
			fn, err := engine.GetString(r, obj, []byte("value"))
			if err != nil {
				return err
			}
			v, err := engine.Call(r, fn, obj)
			if err != nil {
				return m.takeThrown(r, err)
			}
			out = v.Number()
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("value = %g", out), nil

	case "drop":
		slot, err := m.instance(int(arg(0)))
		if err != nil {
			return "", err
		}
		if err := slot.Drop(); err != nil {
			return "", err
		}
		return fmt.Sprintf("instance #%d dropped", int(arg(0))), nil

	case "schedule":
		n := arg(0)
		err := m.rt.Schedule(n,
			func(p any) any { return p.(float64) * p.(float64) },
			func(_ *engine.Region, result, p any, _ *handle.Persistent) {
				m.completed = append(m.completed,
					fmt.Sprintf("%g² = %g", p.(float64), result.(float64)))
			},
			nil)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("scheduled %g", n), nil
	}
	return "", fmt.Errorf("unknown action %q", name)
}

func (m *inspectModel) instance(i int) (*handle.Persistent, error) {
	if i < 0 || i >= len(m.instances) {
		return nil, fmt.Errorf("no instance #%d", i)
	}
	return m.instances[i], nil
}

func (m *inspectModel) takeThrown(r *engine.Region, err error) error {
	if thrown, ok := m.rt.Instance().TakePending(r); ok {
		return fmt.Errorf("thrown: %s", thrown.ErrorMessage())
	}
	return err
}

func parseNums(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var nums []float64
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", part)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Engine Bridge Inspector"))
	b.WriteString("\n\n")
	b.WriteString(statStyle.Render(fmt.Sprintf(
		"refs: %d  instances: %d  outstanding: %d  queued completions: %d",
		m.rt.Instance().RefCount(),
		len(m.instances),
		m.rt.Scheduler().Outstanding(),
		m.rt.Instance().Channel().Pending(),
	)))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectAction:
		for i, a := range actions {
			line := actionStyle.Render(a.name) + "  " + a.detail
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + a.name))
				b.WriteString("  " + a.detail)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateInputArgs:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateShowResult:
		if m.resErr != nil {
			b.WriteString(errorStyle.Render("Error: " + m.resErr.Error()))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • esc back"))
	}

	if len(m.completed) > 0 {
		b.WriteString("\n\nCompleted tasks:\n")
		recent := m.completed
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		for _, line := range recent {
			b.WriteString("  " + resultStyle.Render(line) + "\n")
		}
	}

	return b.String()
}

func runInteractive(workers int) error {
	m, err := newInspectModel(workers)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
