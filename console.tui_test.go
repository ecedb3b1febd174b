package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testConsole struct {
	authors *Page[Author]
	books   *Page[Book]
	model   ConsoleModel
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()
	ctx := context.Background()
	authors := NewPage[Author](zap.NewNop(), AuthorSchema(),
		newMemoryGateway(Author{ID: 1, Name: "Orhan Pamuk"}, Author{ID: 2, Name: "Yaşar Kemal"}), &MockNotifier{})
	books := NewPage[Book](zap.NewNop(), BookSchema(),
		newMemoryGateway(Book{ID: 1, Name: "Kar", Stock: 2}), &MockNotifier{})
	require.NoError(t, authors.Reload(ctx))
	require.NoError(t, books.Reload(ctx))
	return &testConsole{
		authors: authors,
		books:   books,
		model:   NewConsoleModel(ctx, []PageView{authors, books}, nil, nil),
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// press sends the keys one after the other and runs the last command
// when it ends an operation.
func (tc *testConsole) press(t *testing.T, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, key := range keys {
		var model tea.Model
		model, cmd = tc.model.Update(keyMsg(key))
		tc.model = model.(ConsoleModel)
	}
	return cmd
}

// finish runs the operation command and delivers its result to the model.
func (tc *testConsole) finish(t *testing.T, cmd tea.Cmd) opDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(opDoneMsg)
	require.True(t, ok)
	model, _ := tc.model.Update(msg)
	tc.model = model.(ConsoleModel)
	return msg
}

func TestConsoleModel_Navigation(t *testing.T) {
	tc := newTestConsole(t)
	assert.Equal(t, 0, tc.model.active)

	tc.press(t, "j")
	assert.Equal(t, 1, tc.model.cursors[0])
	tc.press(t, "j")
	assert.Equal(t, 1, tc.model.cursors[0], "cursor stays on the last row")
	tc.press(t, "k", "k")
	assert.Equal(t, 0, tc.model.cursors[0])

	tc.press(t, "tab")
	assert.Equal(t, 1, tc.model.active)
	tc.press(t, "tab")
	assert.Equal(t, 0, tc.model.active)
	tc.press(t, "h")
	assert.Equal(t, 1, tc.model.active)

	view := tc.model.View()
	assert.Contains(t, view, "Library Catalog")
	assert.Contains(t, view, "Authors")
	assert.Contains(t, view, "Kar")
}

func TestConsoleModel_CreateRecord(t *testing.T) {
	tc := newTestConsole(t)
	tc.press(t, "n")
	require.Equal(t, FocusForm, tc.model.focus)
	require.Len(t, tc.model.inputs, 3)
	assert.Contains(t, tc.model.View(), "New record")

	tc.press(t, "N", "a", "z", "ı", "m", "tab", "tab", "T", "R")
	assert.Equal(t, 2, tc.model.field)

	cmd := tc.press(t, "enter")
	assert.True(t, tc.model.busy)
	_, ignored := tc.model.Update(keyMsg("q"))
	assert.Nil(t, ignored, "keys are ignored while busy")

	msg := tc.finish(t, cmd)
	assert.Equal(t, "submit", msg.op)
	assert.NoError(t, msg.err)
	assert.False(t, tc.model.busy)
	assert.Equal(t, FocusList, tc.model.focus)
	assert.Equal(t, []Author{
		{ID: 1, Name: "Orhan Pamuk"},
		{ID: 2, Name: "Yaşar Kemal"},
		{ID: 3, Name: "Nazım", Country: "TR"},
	}, tc.authors.Store().Records())
}

func TestConsoleModel_EditRecord(t *testing.T) {
	tc := newTestConsole(t)
	tc.press(t, "j", "e")
	require.Equal(t, FocusForm, tc.model.focus)
	assert.Equal(t, "Yaşar Kemal", tc.model.inputs[0].Value())
	assert.Contains(t, tc.model.View(), "Edit record")

	tc.press(t, "esc")
	assert.Equal(t, FocusList, tc.model.focus)
	assert.Equal(t, FormIdle, tc.authors.FormState())
}

// TestConsoleModel_SubmitFailure ensures the form stays open when a
// submission is rejected.
func TestConsoleModel_SubmitFailure(t *testing.T) {
	tc := newTestConsole(t)
	tc.press(t, "tab", "n", "K", "a", "r")
	msg := tc.finish(t, tc.press(t, "enter"))
	assert.Error(t, msg.err)
	assert.Equal(t, FocusForm, tc.model.focus)
	assert.Equal(t, "Kar", tc.model.inputs[0].Value())
	assert.Equal(t, 1, tc.books.Store().Len())
}

func TestConsoleModel_Delete(t *testing.T) {
	t.Run("with confirmation", func(t *testing.T) {
		tc := newTestConsole(t)
		tc.press(t, "j", "d")
		require.Equal(t, FocusConfirm, tc.model.focus)
		assert.Contains(t, tc.model.View(), "Are you sure")

		tc.press(t, "n")
		assert.Equal(t, FocusList, tc.model.focus)
		assert.Equal(t, 2, tc.authors.Store().Len())

		tc.press(t, "d")
		tc.finish(t, tc.press(t, "y"))
		assert.Equal(t, []Author{{ID: 1, Name: "Orhan Pamuk"}}, tc.authors.Store().Records())
		assert.Equal(t, 0, tc.model.cursors[0])
	})

	t.Run("without confirmation", func(t *testing.T) {
		tc := newTestConsole(t)
		tc.press(t, "tab")
		msg := tc.finish(t, tc.press(t, "d"))
		assert.Equal(t, "delete", msg.op)
		assert.Zero(t, tc.books.Store().Len())
		assert.Nil(t, tc.press(t, "d"), "nothing to delete")
	})
}

func TestConsoleModel_MountAndNotices(t *testing.T) {
	tc := newTestConsole(t)
	mounted := false
	model := NewConsoleModel(context.Background(), tc.model.pages, nil, func(context.Context) error {
		mounted = true
		return nil
	})
	assert.True(t, model.busy)
	assert.NotNil(t, model.Init())
	assert.Contains(t, model.View(), "Working...")

	next, _ := model.Update(opDoneMsg{op: "mount"})
	model = next.(ConsoleModel)
	assert.False(t, model.busy)
	assert.False(t, mounted)

	next, cmd := model.Update(noticeMsg{Kind: NoticeSuccess, Message: "Author created successfully."})
	model = next.(ConsoleModel)
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "Author created successfully.")

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
