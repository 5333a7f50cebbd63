package email_scrape

import (
	"testing"
	"time"

	"applyflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPosting(t *testing.T) {
	received := time.Date(2026, 8, 21, 13, 0, 0, 0, time.UTC)
	lj := LinkedInJob{
		Title:    "Full Stack Developer",
		Company:  "Maple Labs",
		Location: "Toronto, ON (Remote)",
		Salary:   "$80K - $100K / year",
		URL:      "https://www.linkedin.com/jobs/view/4012345678/",
		SourceID: "linkedin:4012345678",
	}

	p := toPosting(lj, received)
	assert.Equal(t, domain.PlatformLinkedIn, p.Platform)
	assert.Equal(t, domain.StatusNew, p.Status)
	require.NotNil(t, p.PostedAt)
	assert.Equal(t, received, *p.PostedAt)
	assert.Equal(t, 80000.0, p.CompMin)
	assert.Equal(t, 100000.0, p.CompMax)
	assert.Equal(t, "USD", p.Currency)
}

func TestToPostingNoDateNoSalary(t *testing.T) {
	p := toPosting(LinkedInJob{Title: "Dev", URL: "u"}, time.Time{})
	assert.Nil(t, p.PostedAt)
	assert.Zero(t, p.CompMin)
	assert.Empty(t, p.Currency)
}

func TestContainsAnyCI(t *testing.T) {
	senders := []string{"jobalerts-noreply@linkedin.com", "jobs-noreply@linkedin.com"}

	assert.True(t, containsAnyCI("LinkedIn Job Alerts <JOBALERTS-NOREPLY@linkedin.com>", senders))
	assert.False(t, containsAnyCI("friend@example.com", senders))
	assert.False(t, containsAnyCI("anyone@example.com", []string{"  "}))
}
