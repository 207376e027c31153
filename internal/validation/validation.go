// Package validation checks a dashboard snapshot for inconsistencies that
// the store tolerates but a user may want to know about.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/studymon/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateSubjectID ConflictType = "duplicate_subject_id"
	ConflictDuplicateTaskID    ConflictType = "duplicate_task_id"
	ConflictDuplicateTodayID   ConflictType = "duplicate_today_id"
	ConflictEmptySubjectName   ConflictType = "empty_subject_name"
	ConflictEmptyTaskText      ConflictType = "empty_task_text"
	ConflictInvalidCategory    ConflictType = "invalid_category"
	ConflictOrphanedTodayTask  ConflictType = "orphaned_today_task"
	ConflictCompletionDrift    ConflictType = "completion_drift"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Conflict represents a detected inconsistency in the dashboard data
type Conflict struct {
	Type        ConflictType
	Severity    Severity
	Description string
	SubjectID   string
	TaskIDs     []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors reports whether any conflict is severe enough to fail a check.
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of conflicts with the given severity.
func (vr *ValidationResult) Count(severity Severity) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Severity == severity {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", c.Severity, c.Description)
	}
	return b.String()
}

// Validator validates dashboard snapshots
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateDashboard checks subjects and today tasks. Orphaned today tasks
// and completion drift are reported as informational: the store keeps
// orphans and only syncs completion from today to the subject.
func (v *Validator) ValidateDashboard(subjects []models.Subject, todayTasks []models.TodayTask) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	add := func(c Conflict) { result.Conflicts = append(result.Conflicts, c) }

	subjectIDs := make(map[string]int)
	for _, s := range subjects {
		subjectIDs[s.ID]++
	}
	for _, id := range sortedDuplicates(subjectIDs) {
		add(Conflict{
			Type:        ConflictDuplicateSubjectID,
			Severity:    SeverityError,
			Description: fmt.Sprintf("Subject id %q is used by %d subjects", id, subjectIDs[id]),
			SubjectID:   id,
		})
	}

	for _, s := range subjects {
		if strings.TrimSpace(s.Name) == "" {
			add(Conflict{
				Type:        ConflictEmptySubjectName,
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("Subject %s has an empty name", s.ID),
				SubjectID:   s.ID,
			})
		}

		for _, category := range models.Categories {
			taskIDs := make(map[string]int)
			for _, t := range s.Tasks[category] {
				taskIDs[t.ID]++
				if strings.TrimSpace(t.Text) == "" {
					add(Conflict{
						Type:        ConflictEmptyTaskText,
						Severity:    SeverityWarning,
						Description: fmt.Sprintf("Task %s in %q / %s has empty text", t.ID, s.Name, category),
						SubjectID:   s.ID,
						TaskIDs:     []string{t.ID},
					})
				}
			}
			for _, id := range sortedDuplicates(taskIDs) {
				add(Conflict{
					Type:        ConflictDuplicateTaskID,
					Severity:    SeverityError,
					Description: fmt.Sprintf("Task id %q appears %d times in %q / %s", id, taskIDs[id], s.Name, category),
					SubjectID:   s.ID,
					TaskIDs:     []string{id},
				})
			}
		}
	}

	todayIDs := make(map[string]int)
	for _, t := range todayTasks {
		todayIDs[t.ID]++
	}
	for _, id := range sortedDuplicates(todayIDs) {
		add(Conflict{
			Type:        ConflictDuplicateTodayID,
			Severity:    SeverityError,
			Description: fmt.Sprintf("Today task id %q appears %d times", id, todayIDs[id]),
			TaskIDs:     []string{id},
		})
	}

	for _, t := range todayTasks {
		if !t.Category.Valid() {
			add(Conflict{
				Type:        ConflictInvalidCategory,
				Severity:    SeverityError,
				Description: fmt.Sprintf("Today task %q has unknown category %q", t.Text, t.Category),
				SubjectID:   t.SubjectID,
				TaskIDs:     []string{t.ID},
			})
			continue
		}

		source, ok := findSource(subjects, t)
		if !ok {
			add(Conflict{
				Type:        ConflictOrphanedTodayTask,
				Severity:    SeverityInfo,
				Description: fmt.Sprintf("Today task %q from %q no longer has a source task", t.Text, t.SubjectName),
				SubjectID:   t.SubjectID,
				TaskIDs:     []string{t.ID},
			})
			continue
		}
		if source.Completed != t.Completed {
			add(Conflict{
				Type:        ConflictCompletionDrift,
				Severity:    SeverityInfo,
				Description: fmt.Sprintf("Today task %q is %s but its source task is %s", t.Text, doneLabel(t.Completed), doneLabel(source.Completed)),
				SubjectID:   t.SubjectID,
				TaskIDs:     []string{t.ID},
			})
		}
	}

	return result
}

func findSource(subjects []models.Subject, t models.TodayTask) (models.Task, bool) {
	for _, s := range subjects {
		if s.ID != t.SubjectID {
			continue
		}
		if i, ok := s.FindTask(t.Category, t.ID); ok {
			return s.Tasks[t.Category][i], true
		}
	}
	return models.Task{}, false
}

func sortedDuplicates(counts map[string]int) []string {
	var ids []string
	for id, n := range counts {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func doneLabel(completed bool) string {
	if completed {
		return "done"
	}
	return "open"
}
