package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/coordinator"
	"todo/internal/output"
	"todo/internal/session"
	"todo/internal/store"
	"todo/internal/task"
	"todo/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

// loadedMsg reports the end of a load attempt.
type loadedMsg struct {
	err error
}

// settledMsg reports a finished mutation.
type settledMsg struct {
	out coordinator.Outcome
}

// Model is the bubbletea model for the task list.
type Model struct {
	ctx  context.Context
	sess *session.Session

	loading bool
	loadErr error

	mode    mode
	cursor  int
	search  textinput.Model
	form    textinput.Model
	notice  string
	target  task.Task
	pending map[string]coordinator.Kind
	width   int
}

// New returns a model over sess. The list loads on Init.
func New(ctx context.Context, sess *session.Session) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "title, description or id"
	search.CharLimit = 256
	search.SetValue(sess.Filter())

	form := textinput.New()
	form.Placeholder = "Task title"
	form.CharLimit = 256

	return Model{
		ctx:     ctx,
		sess:    sess,
		loading: true,
		search:  search,
		form:    form,
		pending: make(map[string]coordinator.Kind),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return loadedMsg{err: sess.Load(ctx)}
	}
}

func (m Model) mutate(fn func(context.Context) coordinator.Outcome) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return settledMsg{out: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = msg.Width - 12
		m.form.Width = msg.Width - 16
		return m, nil

	case loadedMsg:
		m.loading = false
		m.loadErr = msg.err
		return m, nil

	case settledMsg:
		delete(m.pending, msg.out.ID)
		if m.mode == modeForm && msg.out.Phase == coordinator.PhaseCommitted &&
			(msg.out.Kind == coordinator.KindCreate || msg.out.Kind == coordinator.KindUpdate) {
			m.closeForm()
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		if m.loadErr != nil {
			return m.updateLoadError(msg)
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateLoadError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.loading = true
		m.loadErr = nil
		return m, m.load()
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	v := m.sess.View()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(v.Tasks)-1 {
			m.cursor++
		}
	case "/":
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "a":
		m.sess.CancelEdit()
		m.form.SetValue("")
		m.mode = modeForm
		cmd := m.form.Focus()
		return m, cmd
	case "e", "enter":
		t, ok := m.selected(v)
		if !ok {
			return m, nil
		}
		rec, err := m.sess.BeginEdit(t.ID)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.form.SetValue(rec.Title)
		m.form.CursorEnd()
		m.mode = modeForm
		cmd := m.form.Focus()
		return m, cmd
	case " ", "x":
		t, ok := m.selected(v)
		if !ok {
			return m, nil
		}
		m.pending[t.ID] = coordinator.KindToggle
		id := t.ID
		return m, m.mutate(func(ctx context.Context) coordinator.Outcome {
			return m.sess.Toggle(ctx, id)
		})
	case "d":
		t, ok := m.selected(v)
		if !ok {
			return m, nil
		}
		m.target = t
		m.mode = modeConfirmDelete
	case "m":
		if v.More() {
			m.sess.LoadMore()
		}
	case "esc":
		m.sess.DismissStatus()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.sess.SetFilter(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sess.CancelEdit()
		m.closeForm()
		return m, nil
	case "enter":
		if m.sess.Saving() {
			return m, nil
		}
		title := m.form.Value()
		return m, m.mutate(func(ctx context.Context) coordinator.Outcome {
			return m.sess.Save(ctx, title)
		})
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.target.ID
	m.target = task.Task{}
	m.mode = modeList

	switch msg.String() {
	case "y", "Y":
		m.pending[id] = coordinator.KindRemove
		return m, m.mutate(func(ctx context.Context) coordinator.Outcome {
			return m.sess.Remove(ctx, id)
		})
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.form.Blur()
	m.form.SetValue("")
	m.mode = modeList
}

func (m *Model) clampCursor() {
	n := len(m.sess.View().Tasks)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected(v view.View) (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(v.Tasks) {
		return task.Task{}, false
	}
	return v.Tasks[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Todos"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading todos...\n")
		return b.String()
	}
	if m.loadErr != nil {
		b.WriteString(failureBanner.Render("Error: " + m.loadErr.Error()))
		b.WriteString("\n\n")
		var le *store.LoadError
		if errors.As(m.loadErr, &le) && le.Cache {
			b.WriteString("The local cache could not be read. Run 'todo reset' to discard it.\n\n")
		}
		b.WriteString(m.help([][2]string{{"r", "retry"}, {"q", "quit"}}))
		return b.String()
	}

	if m.mode == modeSearch || m.sess.Filter() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if st := m.sess.Status(); !st.IsZero() {
		style := successBanner
		if st.Severity == coordinator.SeverityFailure {
			style = failureBanner
		}
		b.WriteString(style.Render(st.Message))
		b.WriteString(mutedStyle.Render("  (esc to dismiss)"))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(failureBanner.Render(m.notice))
		b.WriteString("\n\n")
	}

	v := m.sess.View()
	if len(v.Tasks) == 0 {
		b.WriteString(mutedStyle.Render(output.EmptyMessage(v.Query)))
		b.WriteString("\n")
	}
	for i, t := range v.Tasks {
		b.WriteString(m.row(i, t))
		b.WriteString("\n")
	}
	if v.More() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("showing %d of %d, press m to load more", len(v.Tasks), v.Matched)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeForm:
		label := "New task: "
		if m.sess.Editing() != "" {
			label = "Edit task: "
		}
		b.WriteString(label)
		b.WriteString(m.form.View())
		if m.sess.Saving() {
			b.WriteString(pendingStyle.Render("  saving..."))
		}
		b.WriteString("\n")
		b.WriteString(m.help([][2]string{{"enter", "save"}, {"esc", "cancel"}}))
	case modeConfirmDelete:
		b.WriteString(fmt.Sprintf("Delete %q? y/n\n", output.NormalizeTitle(m.target.Title)))
	case modeSearch:
		b.WriteString(m.help([][2]string{{"enter", "done"}, {"esc", "done"}}))
	default:
		b.WriteString(m.help([][2]string{
			{"a", "add"}, {"e", "edit"}, {"space", "toggle"}, {"d", "delete"},
			{"/", "search"}, {"m", "more"}, {"q", "quit"},
		}))
	}
	return b.String()
}

func (m Model) row(i int, t task.Task) string {
	cursor := "  "
	if i == m.cursor && m.mode != modeSearch {
		cursor = cursorStyle.Render("> ")
	}
	title := output.NormalizeTitle(t.Title)
	if t.Completed {
		title = doneStyle.Render(title)
	}
	line := cursor + output.Marker(t.Completed) + " " + title + "  " + dueStyle.Render(t.DueLabel)
	if _, ok := m.pending[t.ID]; ok {
		line += pendingStyle.Render("  ...")
	}
	return line
}

func (m Model) help(pairs [][2]string) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = helpKeyStyle.Render(p[0]) + " " + helpDescStyle.Render(p[1])
	}
	return strings.Join(parts, "  ") + "\n"
}
