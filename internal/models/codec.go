package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned when a task names a type that does not exist.
	ErrUnknownType = errors.New("unknown task type")
	// ErrPayloadMismatch is returned when the payload keys do not match the declared type.
	ErrPayloadMismatch = errors.New("payload does not match task type")
)

// payloadWire holds the per-type payload keys of the JSON form. Exactly one
// of them is set, and its key equals the "type" field.
type payloadWire struct {
	Type         TaskType             `json:"type"`
	Housekeeping *HousekeepingPayload `json:"housekeeping,omitempty"`
	Meal         *MealPayload         `json:"meal,omitempty"`
	Shuttle      *ShuttlePayload      `json:"shuttle,omitempty"`
	Celebration  *CelebrationPayload  `json:"celebration,omitempty"`
	HelpRequest  *HelpRequestPayload  `json:"help_request,omitempty"`
}

func wrapPayload(p Payload) (payloadWire, error) {
	w := payloadWire{}
	switch v := p.(type) {
	case *HousekeepingPayload:
		w.Housekeeping = v
	case *MealPayload:
		w.Meal = v
	case *ShuttlePayload:
		w.Shuttle = v
	case *CelebrationPayload:
		w.Celebration = v
	case *HelpRequestPayload:
		w.HelpRequest = v
	default:
		return w, fmt.Errorf("%w: missing payload", ErrPayloadMismatch)
	}
	w.Type = p.Type()
	return w, nil
}

func (w payloadWire) unwrap() (Payload, error) {
	if !w.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}

	var found []Payload
	if w.Housekeeping != nil {
		found = append(found, w.Housekeeping)
	}
	if w.Meal != nil {
		found = append(found, w.Meal)
	}
	if w.Shuttle != nil {
		found = append(found, w.Shuttle)
	}
	if w.Celebration != nil {
		found = append(found, w.Celebration)
	}
	if w.HelpRequest != nil {
		found = append(found, w.HelpRequest)
	}

	switch {
	case len(found) > 1:
		return nil, fmt.Errorf("%w: %d payloads on one %s task", ErrPayloadMismatch, len(found), w.Type)
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %s task has no %q payload", ErrPayloadMismatch, w.Type, w.Type)
	case found[0].Type() != w.Type:
		return nil, fmt.Errorf("%w: %s task carries a %s payload", ErrPayloadMismatch, w.Type, found[0].Type())
	}
	return found[0], nil
}

type taskAlias Task

type taskWire struct {
	taskAlias
	payloadWire
}

// MarshalJSON writes the common fields, the type and the payload under the type's key.
func (t Task) MarshalJSON() ([]byte, error) {
	pw, err := wrapPayload(t.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taskWire{taskAlias: taskAlias(t), payloadWire: pw})
}

// UnmarshalJSON rejects unknown types and payloads that do not match the type.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p, err := w.payloadWire.unwrap()
	if err != nil {
		return err
	}
	*t = Task(w.taskAlias)
	t.Payload = p
	return nil
}

type draftAlias Draft

type draftWire struct {
	draftAlias
	payloadWire
}

// MarshalJSON writes the draft in the same shape as a task.
func (d Draft) MarshalJSON() ([]byte, error) {
	pw, err := wrapPayload(d.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(draftWire{draftAlias: draftAlias(d), payloadWire: pw})
}

// UnmarshalJSON rejects unknown types and payloads that do not match the type.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var w draftWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p, err := w.payloadWire.unwrap()
	if err != nil {
		return err
	}
	*d = Draft(w.draftAlias)
	d.Payload = p
	return nil
}

// EncodePayload returns the JSON form of a payload on its own, for storage.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrPayloadMismatch)
	}
	return json.Marshal(p)
}

// DecodePayload parses a payload stored by EncodePayload for a task of type t.
func DecodePayload(t TaskType, data []byte) (Payload, error) {
	var p Payload
	switch t {
	case TypeHousekeeping:
		p = &HousekeepingPayload{}
	case TypeMeal:
		p = &MealPayload{}
	case TypeShuttle:
		p = &ShuttlePayload{}
	case TypeCelebration:
		p = &CelebrationPayload{}
	case TypeHelpRequest:
		p = &HelpRequestPayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}
