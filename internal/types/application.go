//nolint:revive // types is a standard Go package name pattern
package types

// ApplicationStatus tracks where a job application stands
type ApplicationStatus string

// Application statuses, in rough lifecycle order.
const (
	StatusApplied   ApplicationStatus = "Applied"
	StatusProcessed ApplicationStatus = "Processed"
	StatusInterview ApplicationStatus = "Interview"
	StatusAccepted  ApplicationStatus = "Accepted"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusTimedOut  ApplicationStatus = "Timed out"
)

// Application is one tracked job application, with an optional attached
// resume file reference.
type Application struct {
	ID          string            `json:"id"`
	JobName     string            `json:"jobName"`
	CompanyName string            `json:"companyName"`
	Link        string            `json:"link,omitempty"`
	ResumeLink  string            `json:"resumeLink,omitempty"`
	Status      ApplicationStatus `json:"status"`
}
