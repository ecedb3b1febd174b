package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConsoleFocus is the part of the console receiving the keys.
type ConsoleFocus int

const (
	FocusList ConsoleFocus = iota
	FocusForm
	FocusConfirm
)

// ConsoleModel is the bubbletea model of the catalog console. It renders one
// tab per page with the records table and the active form.
type ConsoleModel struct {
	ctx     context.Context
	pages   []PageView
	notices <-chan Notice
	mount   func(ctx context.Context) error

	active  int
	cursors []int
	focus   ConsoleFocus
	inputs  []textinput.Model
	field   int
	busy    bool
	notice  *Notice
	width   int
}

// NewConsoleModel creates the console over the pages. The mount function
// loads every page at startup.
func NewConsoleModel(ctx context.Context, pages []PageView, notices <-chan Notice, mount func(ctx context.Context) error) ConsoleModel {
	return ConsoleModel{
		ctx:     ctx,
		pages:   pages,
		notices: notices,
		mount:   mount,
		cursors: make([]int, len(pages)),
		busy:    mount != nil,
	}
}

type opDoneMsg struct {
	op  string
	err error
}

type noticeMsg Notice

func runOp(ctx context.Context, op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func waitForNotice(ch <-chan Notice) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func (m ConsoleModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForNotice(m.notices)}
	if m.mount != nil {
		cmds = append(cmds, runOp(m.ctx, "mount", m.mount))
	}
	return tea.Batch(cmds...)
}

func (m ConsoleModel) page() PageView {
	return m.pages[m.active]
}

func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case noticeMsg:
		n := Notice(msg)
		m.notice = &n
		return m, waitForNotice(m.notices)

	case opDoneMsg:
		m.busy = false
		m.clampCursor()
		if msg.op == "submit" && msg.err == nil {
			m.closeForm()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy || len(m.pages) == 0 {
			return m, nil
		}
		switch m.focus {
		case FocusForm:
			return m.updateForm(msg)
		case FocusConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m ConsoleModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.page()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "right", "l":
		m.active = (m.active + 1) % len(m.pages)
	case "shift+tab", "left", "h":
		m.active = (m.active + len(m.pages) - 1) % len(m.pages)
	case "down", "j":
		if m.cursors[m.active] < len(p.Rows())-1 {
			m.cursors[m.active]++
		}
	case "up", "k":
		if m.cursors[m.active] > 0 {
			m.cursors[m.active]--
		}
	case "n":
		if p.FormState() == FormEditingExisting {
			_ = p.CancelForm()
		}
		cmd := m.openForm()
		return m, cmd
	case "e", "enter":
		if err := p.EditAt(m.cursors[m.active]); err != nil {
			return m, nil
		}
		cmd := m.openForm()
		return m, cmd
	case "d":
		if len(p.Rows()) == 0 {
			return m, nil
		}
		if p.ConfirmDelete() {
			m.focus = FocusConfirm
			return m, nil
		}
		return m.deleteSelected()
	case "r":
		m.busy = true
		return m, runOp(m.ctx, "reload", p.Reload)
	}
	return m, nil
}

func (m ConsoleModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.focus = FocusList
		return m.deleteSelected()
	case "n", "N", "esc", "q":
		m.focus = FocusList
	}
	return m, nil
}

func (m ConsoleModel) deleteSelected() (tea.Model, tea.Cmd) {
	p, index := m.page(), m.cursors[m.active]
	m.busy = true
	return m, runOp(m.ctx, "delete", func(ctx context.Context) error {
		return p.DeleteAt(ctx, index)
	})
}

func (m ConsoleModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.page()
	switch msg.String() {
	case "esc":
		m.syncFields()
		_ = p.CancelForm()
		m.closeForm()
		return m, nil
	case "tab", "down":
		cmd := m.focusField(m.field + 1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusField(m.field - 1)
		return m, cmd
	case "enter":
		m.syncFields()
		m.busy = true
		return m, runOp(m.ctx, "submit", p.SubmitForm)
	}
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return m, cmd
}

// openForm builds the inputs from the active draft of the page.
func (m *ConsoleModel) openForm() tea.Cmd {
	p := m.page()
	values := p.FormValues()
	m.inputs = make([]textinput.Model, len(p.Fields()))
	for i, f := range p.Fields() {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 256
		ti.SetValue(values[f.Name])
		m.inputs[i] = ti
	}
	m.focus = FocusForm
	m.field = 0
	return m.focusField(0)
}

func (m *ConsoleModel) focusField(i int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.field = i
	return m.inputs[i].Focus()
}

// syncFields pushes every input value into the page draft.
func (m *ConsoleModel) syncFields() {
	p := m.page()
	for i, f := range p.Fields() {
		if i < len(m.inputs) {
			_ = p.SetField(f.Name, m.inputs[i].Value())
		}
	}
}

func (m *ConsoleModel) closeForm() {
	m.focus = FocusList
	m.inputs = nil
	m.field = 0
}

func (m *ConsoleModel) clampCursor() {
	for i, p := range m.pages {
		n := len(p.Rows())
		if m.cursors[i] >= n {
			m.cursors[i] = n - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

func (m ConsoleModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Library Catalog"))
	b.WriteString("\n")
	if len(m.pages) == 0 {
		return b.String()
	}

	tabs := make([]string, len(m.pages))
	for i, p := range m.pages {
		if i == m.active {
			tabs[i] = activeTabStyle.Render(p.Title())
		} else {
			tabs[i] = inactiveTabStyle.Render(p.Title())
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	p := m.page()
	table := renderTable(p.Columns(), p.Rows(), m.cursors[m.active])
	box := boxStyle
	if m.focus == FocusList {
		box = activeBoxStyle
	}
	if m.width > 0 {
		box = box.MaxWidth(m.width)
	}
	b.WriteString(box.Render(table))
	b.WriteString("\n")

	switch m.focus {
	case FocusForm:
		b.WriteString(activeBoxStyle.Render(m.formView()))
		b.WriteString("\n")
	case FocusConfirm:
		b.WriteString(warningStyle.Render("Are you sure you want to delete this record? (y/n)"))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(mutedStyle.Render("Working..."))
		b.WriteString("\n")
	} else if m.notice != nil {
		b.WriteString(noticeStyle(m.notice.Kind).Render(m.notice.Message))
		b.WriteString("\n")
	}

	if m.focus == FocusForm {
		b.WriteString(formatHelp(
			[2]string{"tab/↑/↓", "field"},
			[2]string{"enter", "save"},
			[2]string{"esc", "cancel"},
		))
	} else {
		b.WriteString(formatHelp(
			[2]string{"tab", "page"},
			[2]string{"↑/↓", "select"},
			[2]string{"n", "new"},
			[2]string{"e", "edit"},
			[2]string{"d", "delete"},
			[2]string{"r", "reload"},
			[2]string{"q", "quit"},
		))
	}
	return b.String()
}

func (m ConsoleModel) formView() string {
	p := m.page()
	heading := "New record"
	if p.FormState() == FormEditingExisting {
		heading = "Edit record"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s • %s", p.Title(), heading)))
	for i, f := range p.Fields() {
		if i >= len(m.inputs) {
			break
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(f.Label))
		b.WriteString(m.inputs[i].View())
	}
	return b.String()
}
