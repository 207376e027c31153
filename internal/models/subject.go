package models

import "encoding/json"

// CategoryTasks maps each category to its ordered task list.
type CategoryTasks map[TaskCategory][]Task

// NewCategoryTasks returns a mapping holding both categories, each empty.
func NewCategoryTasks() CategoryTasks {
	return CategoryTasks{
		CategoryWriting:  []Task{},
		CategoryLearning: []Task{},
	}
}

type Subject struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Tasks CategoryTasks `json:"tasks"`
}

// NewSubject creates a subject with both category lists initialized.
func NewSubject(id, name string) Subject {
	return Subject{
		ID:    id,
		Name:  name,
		Tasks: NewCategoryTasks(),
	}
}

// UnmarshalJSON decodes a subject and normalizes its category mapping so
// that exactly the two known categories are present.
func (s *Subject) UnmarshalJSON(data []byte) error {
	type rawSubject Subject
	var raw rawSubject
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Subject(raw)
	s.normalize()
	return nil
}

func (s *Subject) normalize() {
	tasks := NewCategoryTasks()
	for _, c := range Categories {
		if list := s.Tasks[c]; list != nil {
			tasks[c] = list
		}
	}
	s.Tasks = tasks
}

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (s Subject) Clone() Subject {
	out := Subject{ID: s.ID, Name: s.Name, Tasks: make(CategoryTasks, len(Categories))}
	for _, c := range Categories {
		out.Tasks[c] = append([]Task{}, s.Tasks[c]...)
	}
	return out
}

// FindTask returns the index of the task with the given id within a category.
func (s Subject) FindTask(category TaskCategory, taskID string) (int, bool) {
	for i, t := range s.Tasks[category] {
		if t.ID == taskID {
			return i, true
		}
	}
	return -1, false
}

// TaskCount returns the total and completed task counts across categories.
func (s Subject) TaskCount() (total, completed int) {
	for _, c := range Categories {
		for _, t := range s.Tasks[c] {
			total++
			if t.Completed {
				completed++
			}
		}
	}
	return total, completed
}
