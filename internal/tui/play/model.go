// ============================================================================
// Dramatica - Scene Language Engine
// ============================================================================
//
// Package:     play
// Description: Bubbletea model that performs a scene interactively
// Author:      msto63
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package play

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	mdwerror "github.com/msto63/dramatica/foundation/core/error"
	"github.com/msto63/dramatica/foundation/scene/ast"
	"github.com/msto63/dramatica/internal/session"
)

const (
	headerHeight = 4
	footerHeight = 6
)

// Config holds the player configuration
type Config struct {
	Program *ast.Program
	Manager *session.Manager
	// Timeout bounds each Begin and Resume call
	Timeout time.Duration
}

// Model is the Bubbletea model of the scene player
type Model struct {
	width  int
	height int
	busy   bool

	input    textinput.Model
	viewport viewport.Model

	program *ast.Program
	manager *session.Manager
	timeout time.Duration

	sessionID string
	status    session.Status
	awaiting  string
	lines     []line
	seen      int
	resp      *session.Response
	failure   error
	quitting  bool
}

// New creates a player for cfg.Program. Without a manager an in-memory
// one is created.
func New(cfg Config) Model {
	if cfg.Manager == nil {
		cfg.Manager = session.NewManager(session.Options{})
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Focus()

	vp := viewport.New(80, 20)

	return Model{
		input:    ti,
		viewport: vp,
		program:  cfg.Program,
		manager:  cfg.Manager,
		timeout:  cfg.Timeout,
		busy:     true,
	}
}

// Init starts the session
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.begin())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()
		return m, nil

	case sessionMsg:
		m.busy = false
		m.apply(msg)
		m.refresh()
		return m, nil

	case cancelledMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		if m.status == session.StatusSuspended && m.sessionID != "" {
			return m, m.cancel()
		}
		return m, tea.Quit

	case tea.KeyPgUp:
		m.viewport.HalfViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.HalfViewDown()
		return m, nil

	case tea.KeyEnter:
		if m.finished() {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy || m.status != session.StatusSuspended {
			return m, nil
		}
		value := m.input.Value()
		m.input.Reset()
		m.busy = true
		m.refresh()
		return m, m.resume(value)
	}

	if m.finished() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) apply(msg sessionMsg) {
	if msg.err != nil {
		m.status = session.StatusFailed
		m.failure = msg.err
		m.awaiting = ""
		m.lines = append(m.lines, line{kind: lineError, text: describe(msg.err)})
		return
	}

	resp := msg.resp
	m.resp = resp
	m.sessionID = resp.SessionID
	m.status = resp.Status
	m.awaiting = resp.Awaiting

	// Output is the whole transcript so far; only new lines are appended.
	if resp.Output != "" {
		out := strings.Split(resp.Output, "\n")
		for _, text := range out[min(m.seen, len(out)):] {
			kind := lineSpeech
			if strings.HasPrefix(text, "READ ") {
				kind = lineEcho
			}
			m.lines = append(m.lines, line{kind: kind, text: text})
		}
		m.seen = len(out)
	}

	switch resp.Status {
	case session.StatusCompleted:
		m.lines = append(m.lines, line{kind: lineNote, text: "The scene has ended."})
	case session.StatusFailed:
		if resp.Error != nil {
			m.failure = mdwerror.New(resp.Error.Message).WithCode(resp.Error.Code)
			m.lines = append(m.lines, line{kind: lineError, text: fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)})
		}
	}
}

func describe(err error) string {
	if code := mdwerror.GetCode(err); code != mdwerror.CodeUnknown {
		return fmt.Sprintf("[%s] %s", code, err.Error())
	}
	return err.Error()
}

func (m *Model) refresh() {
	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		switch l.kind {
		case lineEcho:
			b.WriteString(EchoStyle.Render(l.text))
		case lineNote:
			b.WriteString(NoteStyle.Render(l.text))
		case lineError:
			b.WriteString(ErrorStyle.Render(l.text))
		default:
			b.WriteString(SpeechStyle.Render(l.text))
		}
	}
	if m.resp != nil && len(m.resp.Variables) > 0 {
		b.WriteString("\n\n")
		b.WriteString(NoteStyle.Render("Final memory:"))
		for _, v := range m.resp.Variables {
			fmt.Fprintf(&b, "\n  %s %s = %s",
				VariableNameStyle.Render(v.Name),
				VariableKindStyle.Render(v.Value.Kind().String()),
				v.Value.String())
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) finished() bool {
	return m.status == session.StatusCompleted || m.status == session.StatusFailed
}

// View renders the player
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := "Dramatica"
	if m.program != nil {
		title = "Scene " + m.program.Scene
		if m.program.Character != nil {
			title += " with " + m.program.Character.Name
		}
	}

	header := TitlePanelStyle.Render(TitleStyle.Render(title))
	stage := StagePanelStyle.Render(m.viewport.View())

	var prompt string
	switch {
	case m.status == session.StatusSuspended && !m.busy:
		prompt = SubTitleStyle.Render("Value for "+m.awaiting+":") + "\n" + InputStyle.Render(m.input.View())
	case m.finished():
		prompt = SubTitleStyle.Render("Press Enter to leave the stage.")
	default:
		prompt = SubTitleStyle.Render("Performing...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, stage, prompt, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	var state string
	switch m.status {
	case session.StatusCompleted:
		state = StatusDoneStyle.Render("completed")
	case session.StatusFailed:
		state = StatusFailedStyle.Render("failed")
	case session.StatusSuspended:
		state = StatusWaitingStyle.Render("awaiting " + m.awaiting)
	default:
		state = StatusWaitingStyle.Render("starting")
	}

	hints := []string{
		RenderKeyHint("Enter", "submit"),
		RenderKeyHint("PgUp/PgDn", "scroll"),
		RenderKeyHint("Esc", "quit"),
	}
	return StatusBarStyle.Render(state + "  " + strings.Join(hints, "  "))
}

// Err returns the failure of the performance, if any
func (m Model) Err() error { return m.failure }

// Status returns the session status
func (m Model) Status() session.Status { return m.status }

func (m Model) begin() tea.Cmd {
	program, manager, timeout := m.program, m.manager, m.timeout
	return func() tea.Msg {
		if program == nil {
			return sessionMsg{err: mdwerror.New("no scene to perform").WithCode(mdwerror.CodeInvalidInput)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := manager.Begin(ctx, program)
		return sessionMsg{resp: resp, err: err}
	}
}

func (m Model) resume(value string) tea.Cmd {
	id, manager, timeout := m.sessionID, m.manager, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := manager.Resume(ctx, id, value)
		return sessionMsg{resp: resp, err: err}
	}
}

func (m Model) cancel() tea.Cmd {
	id, manager, timeout := m.sessionID, m.manager, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = manager.Cancel(ctx, id)
		return cancelledMsg{}
	}
}

// Run performs the scene in the terminal until it ends or the user quits.
// A failed performance is returned as error.
func Run(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
