package entities

// DefaultStatus is assigned to tasks created without an explicit status
const DefaultStatus = "todo"

// Task represents a single entry in the task list.
// Status is free-form; any caller-supplied value is stored as-is.
type Task struct {
	ID      string `json:"id" db:"id"`
	Text    string `json:"text" db:"text"`
	Details string `json:"details" db:"details"`
	Status  string `json:"status" db:"status"`
}

// NewTask builds a task with defaults applied for the optional fields
func NewTask(id, text string, details, status *string) *Task {
	task := &Task{
		ID:     id,
		Text:   text,
		Status: DefaultStatus,
	}
	if details != nil {
		task.Details = *details
	}
	if status != nil && *status != "" {
		task.Status = *status
	}
	return task
}

// Normalize fills fields that hand-edited or older documents may omit
func (t *Task) Normalize() {
	if t.Status == "" {
		t.Status = DefaultStatus
	}
}

// Apply overwrites exactly the fields that are non-nil.
// An empty status resets the task to DefaultStatus.
func (t *Task) Apply(text, details, status *string) {
	if text != nil {
		t.Text = *text
	}
	if details != nil {
		t.Details = *details
	}
	if status != nil {
		t.Status = *status
		t.Normalize()
	}
}
