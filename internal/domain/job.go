package domain

import "time"

// Status tracks a posting through the application pipeline.
type Status string

const (
	StatusNew          Status = "New"
	StatusReadyToApply Status = "Ready to Apply"
	StatusApplied      Status = "Applied"
	StatusInterview    Status = "Interview"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
	StatusError        Status = "Error"
)

// Platform identifiers for the supported scrape sources.
const (
	PlatformLinkedIn        = "linkedin"
	PlatformGreenhouse      = "greenhouse"
	PlatformLever           = "lever"
	PlatformSmartRecruiters = "smartrecruiters"
	PlatformWorkday         = "workday"
	PlatformUnknown         = "unknown"
)

// Platforms lists every platform value a posting may carry.
func Platforms() []string {
	return []string{
		PlatformLinkedIn,
		PlatformGreenhouse,
		PlatformLever,
		PlatformSmartRecruiters,
		PlatformWorkday,
		PlatformUnknown,
	}
}

type JobPosting struct {
	Title       string
	Company     string
	Location    string
	URL         string // canonical; unique key within the tracker
	Description string
	Platform    string
	PostedAt    *time.Time
	CompMin     float64
	CompMax     float64
	Currency    string
	ScrapedAt   time.Time
	Status      Status

	// Derived by the experience filter.
	JuniorMatch     bool
	ExperienceYears *int
}

// Key returns the identity used for exact-duplicate detection.
func (j JobPosting) Key() string {
	return j.URL
}
