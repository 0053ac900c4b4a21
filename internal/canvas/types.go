// Package canvas implements the REST client for a Canvas-style LMS:
// identity and course/assignment browsing plus the three-stage file
// submission protocol (upload-URL negotiation, binary upload, submission
// registration).
package canvas

import "time"

// User is the authenticated identity behind the access token.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course is a course the user is enrolled in. Entries without a name are
// dropped at decode time.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is a course assignment. Submitted is derived, not
// authoritative: it is set by cross-referencing the bulk submission-state
// lookup, never by the assignment payload itself.
type Assignment struct {
	ID               int64      `json:"id"`
	CourseID         int64      `json:"course_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	DueAt            *time.Time `json:"due_at"`
	SubmissionTypes  []string   `json:"submission_types"`
	IsQuizAssignment bool       `json:"is_quiz_assignment"`
	Submitted        bool       `json:"-"`
}

// Submission is the per-assignment submission state from the bulk lookup.
type Submission struct {
	AssignmentID  int64  `json:"assignment_id"`
	WorkflowState string `json:"workflow_state"`
}

// UploadTicket is the short-lived destination stage 1 of the submission
// protocol returns. It is consumed within a single attempt and never
// reused: a fresh attempt negotiates a fresh ticket.
type UploadTicket struct {
	UploadURL    string            `json:"upload_url"`
	UploadParams map[string]string `json:"upload_params"`
}

// SubmissionResult is the terminal outcome of a submission attempt. It is
// never partially filled: either every stage succeeded, or Stage and
// Message carry the specific failure.
type SubmissionResult struct {
	Success bool
	// Stage names the failed protocol stage; empty on success and on
	// user cancellation.
	Stage   Stage
	Message string
}
