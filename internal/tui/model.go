package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/dashboard"
	"github.com/julianstephens/studymon/internal/models"
	"github.com/julianstephens/studymon/internal/tui/components/subjects"
	"github.com/julianstephens/studymon/internal/tui/components/today"
	"github.com/julianstephens/studymon/internal/validation"
)

type SubjectFormModel struct {
	Name string
}

type TaskFormModel struct {
	SubjectID string
	Category  models.TaskCategory
	Text      string
}

// deleteTarget is what the delete confirmation will remove.
type deleteTarget struct {
	label     string
	subjectID string
	category  models.TaskCategory
	taskID    string
	today     bool
}

type Model struct {
	dashboard *dashboard.Store

	State         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model

	subjectsModel subjects.Model
	todayModel    today.Model

	form        *huh.Form
	subjectForm *SubjectFormModel
	taskForm    *TaskFormModel

	// held is the payload picked up with 'p', waiting to be dropped on Today
	held      *dashboard.Payload
	heldLabel string

	pendingDelete *deleteTarget

	statusMsg           string
	validationWarning   string
	validationConflicts []validation.Conflict

	quitting bool
	width    int
	height   int
}

func NewModel(d *dashboard.Store) Model {
	m := Model{
		dashboard:     d,
		State:         constants.StateToday,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		subjectsModel: subjects.New(0, 0),
		todayModel:    today.New(d.TodayTasks(), 0, 0),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.State {
	case constants.StateSubjects:
		sk := m.subjectsModel.Keys()
		keys = append(keys, sk.Expand, sk.Toggle, sk.Add, sk.PickUp)
	case constants.StateToday:
		tk := m.todayModel.Keys()
		keys = append(keys, tk.Toggle, tk.Drop)
	}
	if m.held != nil {
		keys = append(keys, m.keys.Release)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Release}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.State {
	case constants.StateSubjects:
		sk := m.subjectsModel.Keys()
		actions = []key.Binding{sk.Expand, sk.Toggle, sk.Add, sk.Delete, sk.PickUp}
	case constants.StateToday:
		tk := m.todayModel.Keys()
		actions = []key.Binding{tk.Toggle, tk.Delete, tk.Drop}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh pushes the current dashboard snapshot into the panes and reruns
// validation.
func (m *Model) refresh() {
	m.subjectsModel.SetSubjects(m.dashboard.Subjects(), m.dashboard.IsExpanded)
	m.todayModel.SetTasks(m.dashboard.TodayTasks())
	m.updateValidationStatus()
}

// updateValidationStatus runs validation and updates the warning message
func (m *Model) updateValidationStatus() {
	result := validation.New().ValidateDashboard(m.dashboard.Subjects(), m.dashboard.TodayTasks())
	m.validationConflicts = result.Conflicts

	warnings := result.Count(validation.SeverityWarning) + result.Count(validation.SeverityError)
	if warnings > 0 {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", warnings)
	} else {
		m.validationWarning = ""
	}
}

// report records the outcome of a dashboard mutation. The mutation is
// already visible in memory even when persisting it failed.
func (m *Model) report(err error) {
	if err != nil {
		m.statusMsg = "Save failed: " + err.Error()
	} else {
		m.statusMsg = ""
	}
	m.refresh()
}
