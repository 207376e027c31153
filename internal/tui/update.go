package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/dashboard"
	"github.com/julianstephens/studymon/internal/models"
	"github.com/julianstephens/studymon/internal/tui/components/subjects"
	"github.com/julianstephens/studymon/internal/tui/components/today"
)

// chrome is the number of lines used by tabs, banners and help.
const chrome = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.help.Width = size.Width
		h, v := docStyle.GetFrameSize()
		m.subjectsModel.SetSize(size.Width-h, size.Height-v-chrome)
		m.todayModel.SetSize(size.Width-h, size.Height-v-chrome)
		return m, nil
	}

	switch m.State {
	case constants.StateAddSubject, constants.StateAddTask:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case subjects.AddSubjectMsg:
		return m.openSubjectForm()
	case subjects.AddTaskMsg:
		return m.openTaskForm(msg.SubjectID, msg.Category)
	case subjects.ToggleExpandMsg:
		m.dashboard.ToggleSubjectExpanded(msg.SubjectID)
		m.refresh()
		return m, nil
	case subjects.ToggleTaskMsg:
		m.report(m.dashboard.ToggleTask(msg.SubjectID, msg.Category, msg.TaskID))
		return m, nil
	case subjects.PickUpMsg:
		m.pickUp(msg)
		return m, nil
	case subjects.DeleteSubjectMsg:
		if s, ok := m.dashboard.Subject(msg.ID); ok {
			m.confirmDelete(&deleteTarget{label: "subject " + s.Name, subjectID: s.ID})
		}
		return m, nil
	case subjects.DeleteTaskMsg:
		if t, ok := m.dashboard.Task(msg.SubjectID, msg.Category, msg.TaskID); ok {
			m.confirmDelete(&deleteTarget{
				label:     "task " + t.Text,
				subjectID: msg.SubjectID,
				category:  msg.Category,
				taskID:    t.ID,
			})
		}
		return m, nil
	case today.ToggleMsg:
		m.report(m.dashboard.ToggleTodayTask(msg.ID))
		return m, nil
	case today.DeleteMsg:
		if t, ok := m.dashboard.TodayTask(msg.ID); ok {
			m.confirmDelete(&deleteTarget{label: "today task " + t.Text, taskID: t.ID, today: true})
		}
		return m, nil
	case today.DropMsg:
		m.drop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.State == constants.StateToday {
				m.State = constants.StateSubjects
			} else {
				m.State = constants.StateToday
			}
			return m, nil
		case key.Matches(msg, m.keys.Release):
			if m.held != nil {
				m.held = nil
				m.heldLabel = ""
				m.statusMsg = "Released held task."
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.State {
	case constants.StateSubjects:
		m.subjectsModel, cmd = m.subjectsModel.Update(msg)
	case constants.StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) pickUp(msg subjects.PickUpMsg) {
	subject, ok := m.dashboard.Subject(msg.SubjectID)
	if !ok {
		return
	}
	task, ok := m.dashboard.Task(msg.SubjectID, msg.Category, msg.TaskID)
	if !ok {
		return
	}
	payload, err := dashboard.PickUp(task, subject, msg.Category)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.held = &payload
	m.heldLabel = task.Text
	m.statusMsg = ""
}

// drop commits the held payload. Dropping with nothing held does nothing.
func (m *Model) drop() {
	if m.held == nil {
		return
	}
	payload := m.held
	m.held = nil
	m.heldLabel = ""
	m.report(m.dashboard.Drop(payload.Data))
}

func (m *Model) confirmDelete(target *deleteTarget) {
	m.pendingDelete = target
	m.previousState = m.State
	m.State = constants.StateConfirmDelete
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		t := m.pendingDelete
		var err error
		switch {
		case t.today:
			err = m.dashboard.DeleteTodayTask(t.taskID)
		case t.taskID != "":
			err = m.dashboard.DeleteTask(t.subjectID, t.category, t.taskID)
		default:
			err = m.dashboard.DeleteSubject(t.subjectID)
		}
		m.pendingDelete = nil
		m.State = m.previousState
		m.report(err)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.pendingDelete = nil
		m.State = m.previousState
	}
	return m, nil
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func (m Model) openSubjectForm() (tea.Model, tea.Cmd) {
	m.subjectForm = &SubjectFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject name").
				Value(&m.subjectForm.Name).
				Validate(requireText),
		),
	)
	m.previousState = m.State
	m.State = constants.StateAddSubject
	return m, m.form.Init()
}

func (m Model) openTaskForm(subjectID string, category models.TaskCategory) (tea.Model, tea.Cmd) {
	if !category.Valid() {
		category = models.CategoryWriting
	}
	m.taskForm = &TaskFormModel{SubjectID: subjectID, Category: category}

	options := make([]huh.Option[models.TaskCategory], len(models.Categories))
	for i, c := range models.Categories {
		options[i] = huh.NewOption(string(c), c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.TaskCategory]().
				Title("Category").
				Options(options...).
				Value(&m.taskForm.Category),
			huh.NewInput().
				Title("Task").
				Value(&m.taskForm.Text).
				Validate(requireText),
		),
	)
	m.previousState = m.State
	m.State = constants.StateAddTask
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.State = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.submitForm()
		m.State = m.previousState
	case huh.StateAborted:
		m.State = m.previousState
	}
	return m, cmd
}

func (m *Model) submitForm() {
	switch m.State {
	case constants.StateAddSubject:
		_, err := m.dashboard.AddSubject(strings.TrimSpace(m.subjectForm.Name))
		m.report(err)
	case constants.StateAddTask:
		f := m.taskForm
		_, err := m.dashboard.AddTask(f.SubjectID, f.Category, strings.TrimSpace(f.Text))
		if !m.dashboard.IsExpanded(f.SubjectID) {
			m.dashboard.ToggleSubjectExpanded(f.SubjectID)
		}
		m.report(err)
	}
}
