package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studymon/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.State {
	case constants.StateToday:
		content = docStyle.Render(m.todayModel.View())
	case constants.StateSubjects:
		content = docStyle.Render(m.subjectsModel.View())
	case constants.StateAddSubject, constants.StateAddTask:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	sections := []string{m.viewTabs()}
	if m.validationWarning != "" {
		sections = append(sections, warningStyle.Render(m.validationWarning+" (run 'studymon validate' for details)"))
	}
	if m.held != nil {
		sections = append(sections, heldStyle.Render("Holding: "+m.heldLabel+"  (v on Today to drop, esc to release)"))
	}
	if m.statusMsg != "" {
		sections = append(sections, dangerStyle.Render(m.statusMsg))
	}
	sections = append(sections, content, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	active := m.State
	if active != constants.StateToday && active != constants.StateSubjects {
		active = m.previousState
	}

	var tabs []string
	for _, tab := range []struct {
		title string
		state constants.SessionState
	}{
		{"Today", constants.StateToday},
		{"Subjects", constants.StateSubjects},
	} {
		if active == tab.state {
			tabs = append(tabs, activeTabStyle.Render(tab.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tab.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewConfirmDelete() string {
	label := ""
	if m.pendingDelete != nil {
		label = m.pendingDelete.label
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+label+"?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
