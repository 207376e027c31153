// Package dashboard holds the study dashboard state: subjects with their
// categorized tasks, the today working set, and which subjects are expanded.
// Subjects and today tasks are persisted as two independent records.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/logger"
	"github.com/julianstephens/studymon/internal/models"
	"github.com/julianstephens/studymon/internal/storage"
)

// Store owns the dashboard state and writes each changed collection through
// its provider before a mutation returns. A Store is not safe for concurrent
// use.
type Store struct {
	provider storage.Provider

	subjects   []models.Subject
	todayTasks []models.TodayTask

	// expanded is presentation state and is never persisted.
	expanded map[string]struct{}

	newID func() string
}

func New(provider storage.Provider) *Store {
	return &Store{
		provider:   provider,
		subjects:   []models.Subject{},
		todayTasks: []models.TodayTask{},
		expanded:   make(map[string]struct{}),
		newID:      uuid.NewString,
	}
}

// Load replaces the in-memory collections with the persisted records. Each
// record is read on its own; a missing or malformed record becomes an empty
// collection. Only an unusable provider is reported.
func (s *Store) Load() error {
	if s.provider == nil {
		return errors.New("dashboard has no storage provider")
	}

	subjects, err := loadRecord[models.Subject](s.provider, constants.RecordSubjects)
	if err != nil {
		return err
	}
	todayTasks, err := loadRecord[models.TodayTask](s.provider, constants.RecordTodayTasks)
	if err != nil {
		return err
	}

	s.subjects = subjects
	s.todayTasks = todayTasks
	s.expanded = make(map[string]struct{})
	return nil
}

func loadRecord[T any](p storage.Provider, key string) ([]T, error) {
	data, err := p.GetRecord(key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotLoaded):
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		case errors.Is(err, storage.ErrRecordNotFound):
			logger.Debug("Record not found, starting empty", "record", key)
		default:
			logger.Warn("Failed to read record, starting empty", "record", key, "error", err)
		}
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Malformed record, starting empty", "record", key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Store) saveSubjects() error {
	return s.save(constants.RecordSubjects, s.subjects)
}

func (s *Store) saveTodayTasks() error {
	return s.save(constants.RecordTodayTasks, s.todayTasks)
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.provider.PutRecord(key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) subjectIndex(subjectID string) int {
	for i := range s.subjects {
		if s.subjects[i].ID == subjectID {
			return i
		}
	}
	return -1
}

func (s *Store) todayIndex(taskID string) int {
	for i := range s.todayTasks {
		if s.todayTasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// AddSubject appends a subject with a fresh id and both categories empty.
// The name is stored as given.
func (s *Store) AddSubject(name string) (models.Subject, error) {
	subject := models.NewSubject(s.newID(), name)
	s.subjects = append(s.subjects, subject)
	return subject.Clone(), s.saveSubjects()
}

// DeleteSubject removes the subject if present. Today copies of its tasks are
// left in place.
func (s *Store) DeleteSubject(subjectID string) error {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return nil
	}
	s.subjects = append(s.subjects[:i], s.subjects[i+1:]...)
	delete(s.expanded, subjectID)
	return s.saveSubjects()
}

// AddTask appends a new incomplete task to the subject's category. It returns
// the zero Task when the subject or category is unknown.
func (s *Store) AddTask(subjectID string, category models.TaskCategory, text string) (models.Task, error) {
	if !category.Valid() {
		return models.Task{}, nil
	}
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return models.Task{}, nil
	}

	task := models.Task{ID: s.newID(), Text: text}
	s.subjects[i].Tasks[category] = append(s.subjects[i].Tasks[category], task)
	return task, s.saveSubjects()
}

// ToggleTask flips the completion flag of a subject task. The today copy, if
// any, is not updated.
func (s *Store) ToggleTask(subjectID string, category models.TaskCategory, taskID string) error {
	if !s.flipSubjectTask(subjectID, category, taskID) {
		return nil
	}
	return s.saveSubjects()
}

func (s *Store) flipSubjectTask(subjectID string, category models.TaskCategory, taskID string) bool {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return false
	}
	j, ok := s.subjects[i].FindTask(category, taskID)
	if !ok {
		return false
	}
	tasks := s.subjects[i].Tasks[category]
	tasks[j].Completed = !tasks[j].Completed
	return true
}

// DeleteTask removes a task from its subject. A today copy stays behind.
func (s *Store) DeleteTask(subjectID string, category models.TaskCategory, taskID string) error {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return nil
	}
	j, ok := s.subjects[i].FindTask(category, taskID)
	if !ok {
		return nil
	}
	tasks := s.subjects[i].Tasks[category]
	s.subjects[i].Tasks[category] = append(tasks[:j], tasks[j+1:]...)
	return s.saveSubjects()
}

// TransferToToday appends a snapshot of task to the today set. A task whose
// id is already in the set is ignored.
func (s *Store) TransferToToday(task models.Task, subjectID, subjectName string, category models.TaskCategory) error {
	if s.todayIndex(task.ID) >= 0 {
		return nil
	}
	s.todayTasks = append(s.todayTasks, models.NewTodayTask(task, subjectID, subjectName, category))
	return s.saveTodayTasks()
}

// ToggleTodayTask flips a today task and applies the same flip to the task it
// was copied from, when that task still exists.
func (s *Store) ToggleTodayTask(taskID string) error {
	i := s.todayIndex(taskID)
	if i < 0 {
		return nil
	}
	t := &s.todayTasks[i]
	t.Completed = !t.Completed

	err := s.saveTodayTasks()
	if s.flipSubjectTask(t.SubjectID, t.Category, t.ID) {
		err = errors.Join(err, s.saveSubjects())
	}
	return err
}

// DeleteTodayTask removes a task from the today set only.
func (s *Store) DeleteTodayTask(taskID string) error {
	i := s.todayIndex(taskID)
	if i < 0 {
		return nil
	}
	s.todayTasks = append(s.todayTasks[:i], s.todayTasks[i+1:]...)
	return s.saveTodayTasks()
}

// ToggleSubjectExpanded flips whether a subject is shown expanded.
func (s *Store) ToggleSubjectExpanded(subjectID string) {
	if _, ok := s.expanded[subjectID]; ok {
		delete(s.expanded, subjectID)
		return
	}
	s.expanded[subjectID] = struct{}{}
}

func (s *Store) IsExpanded(subjectID string) bool {
	_, ok := s.expanded[subjectID]
	return ok
}

// ExpandedSubjectIDs returns the expanded subject ids in sorted order.
func (s *Store) ExpandedSubjectIDs() []string {
	ids := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Subjects returns a deep copy of the subjects in order.
func (s *Store) Subjects() []models.Subject {
	out := make([]models.Subject, len(s.subjects))
	for i, subject := range s.subjects {
		out[i] = subject.Clone()
	}
	return out
}

// TodayTasks returns a copy of the today set in order.
func (s *Store) TodayTasks() []models.TodayTask {
	return append([]models.TodayTask{}, s.todayTasks...)
}

func (s *Store) Subject(subjectID string) (models.Subject, bool) {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return models.Subject{}, false
	}
	return s.subjects[i].Clone(), true
}

// LookupSubject resolves ref as a subject id, then as an exact subject name.
// The first subject with a matching name wins.
func (s *Store) LookupSubject(ref string) (models.Subject, bool) {
	if subject, ok := s.Subject(ref); ok {
		return subject, true
	}
	for _, subject := range s.subjects {
		if subject.Name == ref {
			return subject.Clone(), true
		}
	}
	return models.Subject{}, false
}

func (s *Store) Task(subjectID string, category models.TaskCategory, taskID string) (models.Task, bool) {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return models.Task{}, false
	}
	j, ok := s.subjects[i].FindTask(category, taskID)
	if !ok {
		return models.Task{}, false
	}
	return s.subjects[i].Tasks[category][j], true
}

func (s *Store) TodayTask(taskID string) (models.TodayTask, bool) {
	i := s.todayIndex(taskID)
	if i < 0 {
		return models.TodayTask{}, false
	}
	return s.todayTasks[i], true
}

// ProviderPath reports where the store persists, as given by its provider.
func (s *Store) ProviderPath() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetConfigPath()
}
