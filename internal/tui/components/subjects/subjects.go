package subjects

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studymon/internal/models"
)

type AddSubjectMsg struct{}

type AddTaskMsg struct {
	SubjectID string
	Category  models.TaskCategory
}

type ToggleExpandMsg struct {
	SubjectID string
}

type ToggleTaskMsg struct {
	SubjectID string
	Category  models.TaskCategory
	TaskID    string
}

type PickUpMsg struct {
	SubjectID string
	Category  models.TaskCategory
	TaskID    string
}

type DeleteSubjectMsg struct {
	ID string
}

type DeleteTaskMsg struct {
	SubjectID string
	Category  models.TaskCategory
	TaskID    string
}

type RowKind int

const (
	RowSubject RowKind = iota
	RowCategory
	RowTask
)

// Row is one visible line of the tree.
type Row struct {
	Kind      RowKind
	SubjectID string
	Category  models.TaskCategory
	Task      models.Task
	Label     string
	Expanded  bool
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Expand key.Binding
	Toggle key.Binding
	Add    key.Binding
	Delete key.Binding
	PickUp key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Expand: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "expand"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/space", "toggle"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		PickUp: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pick up"),
		),
	}
}

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	subjectStyle  = lipgloss.NewStyle().Bold(true)
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

type Model struct {
	rows     []Row
	cursor   int
	keys     KeyMap
	viewport viewport.Model
}

func New(width, height int) Model {
	return Model{
		keys:     DefaultKeyMap(),
		viewport: viewport.New(width, height),
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// SetSubjects rebuilds the visible rows. Only expanded subjects show their
// categories and tasks.
func (m *Model) SetSubjects(subjects []models.Subject, expanded func(id string) bool) {
	selected, hadSelection := m.Selected()

	rows := make([]Row, 0, len(subjects))
	for _, s := range subjects {
		total, done := s.TaskCount()
		open := expanded(s.ID)
		rows = append(rows, Row{
			Kind:      RowSubject,
			SubjectID: s.ID,
			Label:     fmt.Sprintf("%s (%d/%d)", s.Name, done, total),
			Expanded:  open,
		})
		if !open {
			continue
		}
		for _, c := range models.Categories {
			rows = append(rows, Row{Kind: RowCategory, SubjectID: s.ID, Category: c, Label: string(c)})
			for _, t := range s.Tasks[c] {
				rows = append(rows, Row{Kind: RowTask, SubjectID: s.ID, Category: c, Task: t, Label: t.Text})
			}
		}
	}
	m.rows = rows

	if hadSelection {
		m.cursor = m.indexOf(selected)
	}
	m.clamp()
	m.sync()
}

// indexOf finds the row matching r, falling back to its subject row and
// then to the current cursor.
func (m Model) indexOf(r Row) int {
	fallback := m.cursor
	for i, row := range m.rows {
		if row.SubjectID != r.SubjectID {
			continue
		}
		if row.Kind == r.Kind && row.Category == r.Category && row.Task.ID == r.Task.ID {
			return i
		}
		if row.Kind == RowSubject {
			fallback = i
		}
	}
	return fallback
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.sync()
}

// Selected returns the row under the cursor.
func (m Model) Selected() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) Rows() []Row {
	return m.rows
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.sync()
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.sync()
	case key.Matches(keyMsg, m.keys.Add):
		r, ok := m.Selected()
		if !ok || r.Kind == RowSubject {
			return m, func() tea.Msg { return AddSubjectMsg{} }
		}
		return m, func() tea.Msg { return AddTaskMsg{SubjectID: r.SubjectID, Category: r.Category} }
	case key.Matches(keyMsg, m.keys.Expand):
		if r, ok := m.Selected(); ok && r.Kind == RowSubject {
			return m, func() tea.Msg { return ToggleExpandMsg{SubjectID: r.SubjectID} }
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		if r, ok := m.Selected(); ok && r.Kind == RowTask {
			return m, func() tea.Msg {
				return ToggleTaskMsg{SubjectID: r.SubjectID, Category: r.Category, TaskID: r.Task.ID}
			}
		}
	case key.Matches(keyMsg, m.keys.PickUp):
		if r, ok := m.Selected(); ok && r.Kind == RowTask {
			return m, func() tea.Msg {
				return PickUpMsg{SubjectID: r.SubjectID, Category: r.Category, TaskID: r.Task.ID}
			}
		}
	case key.Matches(keyMsg, m.keys.Delete):
		r, ok := m.Selected()
		if !ok {
			break
		}
		switch r.Kind {
		case RowSubject:
			return m, func() tea.Msg { return DeleteSubjectMsg{ID: r.SubjectID} }
		case RowTask:
			return m, func() tea.Msg {
				return DeleteTaskMsg{SubjectID: r.SubjectID, Category: r.Category, TaskID: r.Task.ID}
			}
		}
	}
	return m, nil
}

// sync renders the rows into the viewport and keeps the cursor visible.
func (m *Model) sync() {
	m.viewport.SetContent(m.render())
	if m.viewport.Height <= 0 {
		return
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m Model) render() string {
	if len(m.rows) == 0 {
		return emptyStyle.Render("No subjects yet. Press 'a' to add one.")
	}

	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		lines[i] = prefix + renderRow(r)
	}
	return strings.Join(lines, "\n")
}

func renderRow(r Row) string {
	switch r.Kind {
	case RowSubject:
		marker := "▸ "
		if r.Expanded {
			marker = "▾ "
		}
		return marker + subjectStyle.Render(r.Label)
	case RowCategory:
		return "  " + categoryStyle.Render(r.Label)
	default:
		if r.Task.Completed {
			return "    [x] " + doneStyle.Render(r.Label)
		}
		return "    [ ] " + r.Label
	}
}

func (m Model) View() string {
	return m.viewport.View()
}
