package notion

import (
	"testing"
	"time"

	"applyflow/internal/domain"

	gonotion "github.com/dstotijn/go-notion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageProperties(t *testing.T) {
	applied := time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)
	rec := domain.TrackedRecord{
		URL:             "https://www.linkedin.com/jobs/view/4012345678/",
		Title:           "Full Stack Developer",
		Company:         "Maple Labs",
		Location:        "Toronto, ON",
		Platform:        domain.PlatformLinkedIn,
		DatePosted:      "2026-08-20",
		Status:          domain.StatusApplied,
		AppliedAt:       &applied,
		ResumePath:      "/out/resume.pdf",
		CoverLetterPath: "/out/cover_letter.pdf",
	}

	props := pageProperties(rec)

	require.Contains(t, props, "Job Title")
	require.NotEmpty(t, props["Job Title"].Title)
	assert.Equal(t, "Full Stack Developer", props["Job Title"].Title[0].Text.Content)

	require.NotNil(t, props["Job URL"].URL)
	assert.Equal(t, rec.URL, *props["Job URL"].URL)

	require.NotNil(t, props["Status"].Select)
	assert.Equal(t, "Applied", props["Status"].Select.Name)

	require.NotNil(t, props["Platform"].Select)
	assert.Equal(t, "linkedin", props["Platform"].Select.Name)

	require.NotNil(t, props["Date Posted"].Date)
	require.NotNil(t, props["Applied At"].Date)

	assert.Equal(t, "/out/resume.pdf", props["Resume Path"].RichText[0].Text.Content)
}

func TestPagePropertiesSkipsEmptyFields(t *testing.T) {
	props := pageProperties(domain.TrackedRecord{Title: "Dev", URL: "u", Status: domain.StatusReadyToApply})

	assert.NotContains(t, props, "Company")
	assert.NotContains(t, props, "Notes")
	assert.NotContains(t, props, "Date Posted")
	assert.NotContains(t, props, "Applied At")
}

func TestPagePropertiesBadDateIgnored(t *testing.T) {
	props := pageProperties(domain.TrackedRecord{Title: "Dev", DatePosted: "yesterday"})
	assert.NotContains(t, props, "Date Posted")
}

func TestTrackingSchema(t *testing.T) {
	schema := trackingSchema()

	assert.Equal(t, gonotion.DBPropTypeTitle, schema["Job Title"].Type)
	assert.Equal(t, gonotion.DBPropTypeURL, schema["Job URL"].Type)
	assert.Equal(t, gonotion.DBPropTypeSelect, schema["Status"].Type)
	require.NotNil(t, schema["Status"].Select)
	assert.Len(t, schema["Status"].Select.Options, 6)
	require.NotNil(t, schema["Platform"].Select)
	assert.Len(t, schema["Platform"].Select.Options, len(domain.Platforms()))
	assert.Equal(t, gonotion.DBPropTypeDate, schema["Applied At"].Type)
}

func TestNewSinkRequiresConfig(t *testing.T) {
	assert.False(t, NewSink("", "db").Enabled())
	assert.False(t, NewSink("token", "").Enabled())
	assert.True(t, NewSink("token", "db").Enabled())
}
