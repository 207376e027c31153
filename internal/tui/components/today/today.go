package today

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studymon/internal/models"
)

type ToggleMsg struct {
	ID string
}

type DeleteMsg struct {
	ID string
}

// DropMsg asks for the held payload to be committed.
type DropMsg struct{}

type Item struct {
	Task models.TodayTask
}

func (i Item) Title() string {
	if i.Task.Completed {
		return "✓ " + i.Task.Text
	}
	return "○ " + i.Task.Text
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %s", i.Task.SubjectName, i.Task.Category)
}

func (i Item) FilterValue() string { return i.Task.Text }

type KeyMap struct {
	Toggle key.Binding
	Delete key.Binding
	Drop   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/space", "toggle"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		Drop: key.NewBinding(
			key.WithKeys("v", "P"),
			key.WithHelp("v", "drop here"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(tasks []models.TodayTask, width, height int) Model {
	l := list.New(items(tasks), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")

	return Model{
		list: l,
		keys: DefaultKeyMap(),
	}
}

func items(tasks []models.TodayTask) []list.Item {
	out := make([]list.Item, len(tasks))
	for i, t := range tasks {
		out[i] = Item{Task: t}
	}
	return out
}

func (m *Model) SetTasks(tasks []models.TodayTask) {
	m.list.SetItems(items(tasks))
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// Selected returns the today task under the cursor.
func (m Model) Selected() (models.TodayTask, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.TodayTask{}, false
	}
	return i.Task, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Drop):
			return m, func() tea.Msg { return DropMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if t, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleMsg{ID: t.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if t, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteMsg{ID: t.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}
