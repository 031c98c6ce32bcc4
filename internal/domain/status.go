package domain

// Status is the lifecycle of a single trackable slot (an exercise in a
// workout, or one of the four daily meals). Transitions are terminal:
// pending -> completed or pending -> skipped, nothing leaves either.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// Done reports whether the slot no longer needs attention. A skipped
// slot counts as done: skipping is an explicit resolution, not an
// outstanding task.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusSkipped
}
