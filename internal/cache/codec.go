package cache

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo/internal/task"
)

const slotSchemaURL = "todos.schema.json"

// slotSchema describes a well-formed slot: an array of task records.
const slotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "desc", "date", "completed"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "desc": {"type": "string"},
      "date": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var compiledSlotSchema = jsonschema.MustCompileString(slotSchemaURL, slotSchema)

// Encode serializes tasks. A nil list encodes as an empty array.
func Encode(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// Decode parses and validates a slot payload. Ids must be unique.
func Decode(data []byte) ([]task.Task, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := compiledSlotSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return tasks, nil
}
