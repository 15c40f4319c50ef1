package constants

// JobStatus is the lifecycle status of a remote OCR job.
type JobStatus string

const (
	JobStatusSubmitted JobStatus = "SUBMITTED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED" // terminal
	JobStatusFailed    JobStatus = "FAILED"    // terminal
	JobStatusTimedOut  JobStatus = "TIMED_OUT" // terminal, assigned locally when the poll budget runs out
)

// Terminal reports whether the status ends the job lifecycle.
// A terminal job is never polled or resubmitted by the client.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusTimedOut
}
