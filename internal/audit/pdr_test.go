package audit

import (
	"testing"

	"github.com/fentz26/resortops/internal/models"
)

type memorySink struct {
	entries []models.PDREntry
}

func (m *memorySink) WritePDR(action, inputsHash, outcome, taskID, details string) (*models.PDREntry, error) {
	e := models.PDREntry{Action: action, InputsHash: inputsHash, Outcome: outcome, TaskID: taskID, Details: details}
	m.entries = append(m.entries, e)
	return &e, nil
}

func TestRecord(t *testing.T) {
	sink := &memorySink{}
	w := NewPDRWriter(sink)

	inputs := map[string]string{"to": "heading"}
	if _, err := w.Record("task.advance", inputs, OutcomeSuccess, "task-1", "not_departed -> heading"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(sink.entries))
	}
	got := sink.entries[0]
	if got.InputsHash != HashInputs(inputs) {
		t.Errorf("Unexpected hash %s", got.InputsHash)
	}
	if got.TaskID != "task-1" || got.Outcome != OutcomeSuccess {
		t.Errorf("Unexpected entry %+v", got)
	}
}

func TestHashInputs(t *testing.T) {
	a := HashInputs(map[string]string{"staff": "STF002"})
	b := HashInputs(map[string]string{"staff": "STF002"})
	c := HashInputs(map[string]string{"staff": "STF003"})

	if a != b {
		t.Error("Identical inputs must hash identically")
	}
	if a == c {
		t.Error("Different inputs must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
	if HashInputs(make(chan int)) != "hash_error" {
		t.Error("Unmarshalable inputs should report hash_error")
	}
}
