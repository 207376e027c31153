package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/studymon/internal/constants"
	"github.com/julianstephens/studymon/internal/logger"
	"github.com/julianstephens/studymon/internal/models"
)

// Payload is the serialized snapshot carried between picking a task up and
// dropping it on the today set. It holds plain data, never a live reference.
type Payload struct {
	MediaType string
	Data      []byte
}

func (p Payload) String() string {
	return string(p.Data)
}

// PickUp serializes the today snapshot of task without committing it.
func PickUp(task models.Task, subject models.Subject, category models.TaskCategory) (Payload, error) {
	if !category.Valid() {
		return Payload{}, fmt.Errorf("invalid category: %q", category)
	}
	data, err := json.Marshal(models.NewTodayTask(task, subject.ID, subject.Name, category))
	if err != nil {
		return Payload{}, fmt.Errorf("failed to encode payload: %w", err)
	}
	return Payload{MediaType: constants.PayloadMediaType, Data: data}, nil
}

// Drop commits a picked-up payload to the today set. An empty, undecodable
// or incomplete payload is ignored.
func (s *Store) Drop(data []byte) error {
	if len(data) == 0 {
		logger.Debug("Ignoring drop", "reason", "empty payload")
		return nil
	}

	var t models.TodayTask
	if err := json.Unmarshal(data, &t); err != nil {
		logger.Debug("Ignoring drop", "reason", "undecodable payload", "error", err)
		return nil
	}
	if t.ID == "" {
		logger.Debug("Ignoring drop", "reason", "payload has no task id")
		return nil
	}
	if !t.Category.Valid() {
		logger.Debug("Ignoring drop", "reason", "unknown category", "category", t.Category)
		return nil
	}

	return s.TransferToToday(t.Task, t.SubjectID, t.SubjectName, t.Category)
}
