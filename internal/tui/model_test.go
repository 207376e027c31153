package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/dashboard"
	"github.com/julianstephens/studymon/internal/models"
	"github.com/julianstephens/studymon/internal/storage"
	"github.com/julianstephens/studymon/internal/tui/components/subjects"
	"github.com/julianstephens/studymon/internal/tui/components/today"
)

type fixture struct {
	store   *storage.MemoryStore
	d       *dashboard.Store
	subject models.Subject
	task    models.Task
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	d := dashboard.New(store)
	if err := d.Load(); err != nil {
		t.Fatal(err)
	}
	subject, err := d.AddSubject("Math")
	if err != nil {
		t.Fatal(err)
	}
	task, err := d.AddTask(subject.ID, models.CategoryLearning, "Chapter 3")
	if err != nil {
		t.Fatal(err)
	}
	return fixture{store: store, d: d, subject: subject, task: task}
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// send delivers msg and feeds back a message emitted by a pane.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case subjects.AddSubjectMsg, subjects.AddTaskMsg, subjects.ToggleExpandMsg,
		subjects.ToggleTaskMsg, subjects.PickUpMsg, subjects.DeleteSubjectMsg,
		subjects.DeleteTaskMsg, today.ToggleMsg, today.DeleteMsg, today.DropMsg:
		updated, _ = m.Update(out)
		m = updated.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyPress(k))
	}
	return m
}

// selectTask moves the subjects cursor to the fixture task, expanding its
// subject first.
func selectTask(t *testing.T, m Model, f fixture) Model {
	t.Helper()
	m = press(t, m, "tab", "enter")
	for i := 0; i < len(m.subjectsModel.Rows()); i++ {
		if r, ok := m.subjectsModel.Selected(); ok && r.Kind == subjects.RowTask && r.Task.ID == f.task.ID {
			return m
		}
		m = press(t, m, "j")
	}
	t.Fatalf("task %q not reachable in subjects pane", f.task.Text)
	return m
}

func TestTabSwitchesPanes(t *testing.T) {
	f := setup(t)
	m := NewModel(f.d)

	if m.State != constants.StateToday {
		t.Fatalf("initial state = %v, want today", m.State)
	}
	m = press(t, m, "tab")
	if m.State != constants.StateSubjects {
		t.Errorf("after tab state = %v, want subjects", m.State)
	}
	m = press(t, m, "tab")
	if m.State != constants.StateToday {
		t.Errorf("after second tab state = %v, want today", m.State)
	}
}

func TestExpandShowsTasks(t *testing.T) {
	f := setup(t)
	m := press(t, NewModel(f.d), "tab")

	if n := len(m.subjectsModel.Rows()); n != 1 {
		t.Fatalf("collapsed rows = %d, want 1", n)
	}
	m = press(t, m, "enter")
	if !f.d.IsExpanded(f.subject.ID) {
		t.Error("enter should expand the subject")
	}
	// subject, two categories, one task
	if n := len(m.subjectsModel.Rows()); n != 4 {
		t.Errorf("expanded rows = %d, want 4", n)
	}
	if !strings.Contains(m.View(), "Chapter 3") {
		t.Error("expanded view should list the task")
	}
}

func TestToggleSubjectTask(t *testing.T) {
	f := setup(t)
	m := selectTask(t, NewModel(f.d), f)

	m = press(t, m, "x")
	got, _ := f.d.Task(f.subject.ID, models.CategoryLearning, f.task.ID)
	if !got.Completed {
		t.Error("x should complete the selected task")
	}
	m = press(t, m, " ")
	got, _ = f.d.Task(f.subject.ID, models.CategoryLearning, f.task.ID)
	if got.Completed {
		t.Error("space should toggle the task back")
	}
}

func TestPickUpAndDrop(t *testing.T) {
	f := setup(t)
	m := selectTask(t, NewModel(f.d), f)

	m = press(t, m, "p")
	if m.held == nil {
		t.Fatal("p should hold the selected task")
	}
	if len(f.d.TodayTasks()) != 0 {
		t.Fatal("picking up must not commit")
	}
	if !strings.Contains(m.View(), "Holding: Chapter 3") {
		t.Error("view should show the held task")
	}

	m = press(t, m, "tab", "v")
	if m.held != nil {
		t.Error("drop should clear the held task")
	}
	today := f.d.TodayTasks()
	if len(today) != 1 || today[0].ID != f.task.ID || today[0].SubjectName != "Math" {
		t.Fatalf("today = %+v", today)
	}

	m = press(t, m, "v")
	if len(f.d.TodayTasks()) != 1 {
		t.Error("dropping with nothing held must not add")
	}
}

func TestEscReleasesHeldTask(t *testing.T) {
	f := setup(t)
	m := selectTask(t, NewModel(f.d), f)

	m = press(t, m, "p", "esc", "tab", "v")
	if m.held != nil {
		t.Error("esc should release the held task")
	}
	if len(f.d.TodayTasks()) != 0 {
		t.Error("released task must not be dropped")
	}
}

func TestTodayTogglePropagates(t *testing.T) {
	f := setup(t)
	if err := f.d.TransferToToday(f.task, f.subject.ID, f.subject.Name, models.CategoryLearning); err != nil {
		t.Fatal(err)
	}
	m := NewModel(f.d)

	press(t, m, "x")
	todayTask, _ := f.d.TodayTask(f.task.ID)
	source, _ := f.d.Task(f.subject.ID, models.CategoryLearning, f.task.ID)
	if !todayTask.Completed || !source.Completed {
		t.Errorf("today=%v source=%v, want both completed", todayTask.Completed, source.Completed)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := setup(t)
	m := press(t, NewModel(f.d), "tab", "d")

	if m.State != constants.StateConfirmDelete {
		t.Fatalf("state = %v, want confirm delete", m.State)
	}
	if !strings.Contains(m.View(), "Delete subject Math?") {
		t.Errorf("unexpected confirm view: %q", m.View())
	}

	m = press(t, m, "n")
	if m.State != constants.StateSubjects || len(f.d.Subjects()) != 1 {
		t.Fatal("n should cancel the delete")
	}

	m = press(t, m, "d", "y")
	if m.State != constants.StateSubjects {
		t.Errorf("state after delete = %v", m.State)
	}
	if len(f.d.Subjects()) != 0 {
		t.Error("y should delete the subject")
	}
}

func TestDeleteTodayTaskKeepsSource(t *testing.T) {
	f := setup(t)
	if err := f.d.TransferToToday(f.task, f.subject.ID, f.subject.Name, models.CategoryLearning); err != nil {
		t.Fatal(err)
	}

	press(t, NewModel(f.d), "d", "y")
	if len(f.d.TodayTasks()) != 0 {
		t.Error("today task should be removed")
	}
	if _, ok := f.d.Task(f.subject.ID, models.CategoryLearning, f.task.ID); !ok {
		t.Error("source task must survive")
	}
}

func TestAddFormOpensAndCancels(t *testing.T) {
	f := setup(t)
	m := press(t, NewModel(f.d), "tab", "a")

	if m.State != constants.StateAddSubject {
		t.Fatalf("state = %v, want add subject", m.State)
	}
	m = press(t, m, "esc")
	if m.State != constants.StateSubjects {
		t.Errorf("esc should close the form, state = %v", m.State)
	}
}

func TestSubmitTaskFormExpandsSubject(t *testing.T) {
	f := setup(t)
	m := press(t, NewModel(f.d), "tab")

	updated, _ := m.openTaskForm(f.subject.ID, models.CategoryWriting)
	m = updated.(Model)
	m.taskForm.Text = "  Draft intro  "
	m.submitForm()

	got, _ := f.d.Subject(f.subject.ID)
	tasks := got.Tasks[models.CategoryWriting]
	if len(tasks) != 1 || tasks[0].Text != "Draft intro" {
		t.Errorf("writing tasks = %+v", tasks)
	}
	if !f.d.IsExpanded(f.subject.ID) {
		t.Error("adding a task should expand its subject")
	}
}

func TestSaveFailureIsReported(t *testing.T) {
	f := setup(t)
	m := selectTask(t, NewModel(f.d), f)
	f.store.FailWrites = errors.New("disk full")

	m = press(t, m, "x")
	if !strings.Contains(m.statusMsg, "disk full") {
		t.Errorf("status = %q, want save failure", m.statusMsg)
	}
	got, _ := f.d.Task(f.subject.ID, models.CategoryLearning, f.task.ID)
	if !got.Completed {
		t.Error("in-memory toggle should stand after a failed save")
	}
}

func TestValidationBanner(t *testing.T) {
	store := storage.NewMemoryStore()
	_ = store.Init()
	raw := `[{"id":"s1","name":"","tasks":{}}]`
	if err := store.PutRecord(constants.RecordSubjects, []byte(raw)); err != nil {
		t.Fatal(err)
	}
	d := dashboard.New(store)
	if err := d.Load(); err != nil {
		t.Fatal(err)
	}

	m := NewModel(d)
	if m.validationWarning == "" {
		t.Fatal("expected a validation warning for an unnamed subject")
	}
	if !strings.Contains(m.View(), "validation warning") {
		t.Error("banner should be rendered")
	}
}

func TestQuit(t *testing.T) {
	f := setup(t)
	updated, cmd := NewModel(f.d).Update(keyPress("q"))
	m := updated.(Model)
	if !m.quitting || cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
