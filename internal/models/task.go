package models

import (
	"fmt"
	"strings"
)

type TaskCategory string

const (
	CategoryWriting  TaskCategory = "Writing Work"
	CategoryLearning TaskCategory = "Learning"
)

// Categories lists every category in display order.
var Categories = []TaskCategory{CategoryWriting, CategoryLearning}

func (c TaskCategory) Valid() bool {
	return c == CategoryWriting || c == CategoryLearning
}

// ParseCategory accepts the canonical category value or the short names
// "writing" and "learning", case-insensitive.
func ParseCategory(s string) (TaskCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "writing", "writing work", "write", "w":
		return CategoryWriting, nil
	case "learning", "learn", "l":
		return CategoryLearning, nil
	default:
		return "", fmt.Errorf("invalid category: %q (expected writing|learning)", s)
	}
}

type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodayTask is a frozen copy of a Task placed into the daily working set.
// Text and SubjectName are captured at transfer time and never refreshed.
type TodayTask struct {
	Task
	SubjectID   string       `json:"subjectId"`
	SubjectName string       `json:"subjectName"`
	Category    TaskCategory `json:"category"`
}

// NewTodayTask builds the snapshot that is committed to the daily plan.
func NewTodayTask(task Task, subjectID, subjectName string, category TaskCategory) TodayTask {
	return TodayTask{
		Task:        task,
		SubjectID:   subjectID,
		SubjectName: subjectName,
		Category:    category,
	}
}
