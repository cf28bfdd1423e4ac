package model

// Status represents the lifecycle state of a download task.
type Status string

const (
	// StatusPending means the task is registered but not yet admitted.
	StatusPending Status = "Pending"

	// StatusInProgress means a transfer attempt is running.
	StatusInProgress Status = "InProgress"

	// StatusPaused means the task was paused and can be resumed.
	StatusPaused Status = "Paused"

	// StatusCompleted means the file was downloaded (and verified, when an
	// expected checksum was supplied).
	StatusCompleted Status = "Completed"

	// StatusFailed means all attempts were exhausted or a terminal error
	// occurred.
	StatusFailed Status = "Failed"

	// StatusCancelled means the task was cancelled by the caller.
	StatusCancelled Status = "Cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Active reports whether the task is still controllable (pause/cancel).
func (s Status) Active() bool {
	return s == StatusInProgress || s == StatusPaused
}

// Terminal reports whether the status is stable and final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}
