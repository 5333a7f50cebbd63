package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applyflow/internal/config"
	"applyflow/internal/domain"
)

func testFilter() *Filter {
	return New(config.Default())
}

func TestExtractYearsRequired(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		years int
		ok    bool
	}{
		{"range takes upper bound", "3-5 years of backend work", 5, true},
		{"range with to", "2 to 4 years building APIs", 4, true},
		{"plus form", "5+ years required", 5, true},
		{"of experience form", "6 years of experience with Go", 6, true},
		{"experience without of", "4 years experience", 4, true},
		{"maximum across matches", "3-5 years preferred, ideally 7+ years", 7, true},
		{"no mention", "We value curiosity and ownership", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			years, ok := ExtractYearsRequired(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.years, years)
			}
		})
	}
}

func TestPassesExperienceSeniorAlwaysRejects(t *testing.T) {
	f := testFilter()

	assert.False(t, f.PassesExperience("Senior Backend Engineer", "1-3 years experience"))
	assert.False(t, f.PassesExperience("Backend Engineer", "reporting to the Head of Platform"))
	assert.False(t, f.PassesExperience("Staff Engineer", ""))
}

func TestPassesExperienceJuniorOverride(t *testing.T) {
	f := testFilter()
	desc := "Requires 8 years of experience with distributed systems"

	// Over the cap, but an explicit junior keyword overrides the rejection.
	assert.True(t, f.PassesExperience("Junior Developer", desc))
	assert.False(t, f.PassesExperience("Developer", desc))
}

func TestPassesExperienceDefaults(t *testing.T) {
	f := testFilter()

	assert.True(t, f.PassesExperience("Developer", "no years mentioned at all"))
	assert.True(t, f.PassesExperience("Developer", "2-4 years experience"))
}

func TestEvaluate(t *testing.T) {
	f := testFilter()
	recent := time.Now().Add(-2 * time.Hour)

	t.Run("senior posting rejected", func(t *testing.T) {
		d := f.Evaluate(domain.JobPosting{
			Title:       "Backend Engineer",
			Description: "Looking for a Senior backend engineer, 10+ years required",
			Location:    "Toronto, ON",
			PostedAt:    &recent,
		})
		assert.False(t, d.Accept)
		assert.Equal(t, ReasonSeniorKeyword, d.Reason)
	})

	t.Run("junior posting accepted with derived fields", func(t *testing.T) {
		j := domain.JobPosting{
			Title:       "Developer",
			Description: "Junior developer, 1-3 years experience",
			Location:    "Toronto, ON",
			PostedAt:    &recent,
		}
		d := f.Evaluate(j)
		assert.True(t, d.Accept)
		assert.True(t, d.JuniorMatch)
		require.NotNil(t, d.Years)
		assert.Equal(t, 3, *d.Years)

		d.Enrich(&j)
		assert.True(t, j.JuniorMatch)
		require.NotNil(t, j.ExperienceYears)
		assert.Equal(t, 3, *j.ExperienceYears)
	})

	t.Run("stale posting rejected", func(t *testing.T) {
		old := time.Now().Add(-48 * time.Hour)
		d := f.Evaluate(domain.JobPosting{
			Title:    "Developer",
			Location: "Toronto, ON",
			PostedAt: &old,
		})
		assert.False(t, d.Accept)
		assert.Equal(t, ReasonStale, d.Reason)
	})

	t.Run("undated posting passes recency", func(t *testing.T) {
		d := f.Evaluate(domain.JobPosting{Title: "Developer", Location: "Ottawa, ON"})
		assert.True(t, d.Accept)
	})

	t.Run("years over cap without junior keyword", func(t *testing.T) {
		d := f.Evaluate(domain.JobPosting{
			Title:       "Developer",
			Description: "9 years of experience required",
			Location:    "Calgary, AB",
			PostedAt:    &recent,
		})
		assert.False(t, d.Accept)
		assert.Equal(t, ReasonYearsExceeded, d.Reason)
		require.NotNil(t, d.Years)
		assert.Equal(t, 9, *d.Years)
	})
}

func TestEvaluateLocation(t *testing.T) {
	f := testFilter()

	tests := []struct {
		name     string
		location string
		accept   bool
	}{
		{"configured city", "Toronto, ON", true},
		{"diacritics folded", "Montréal, QC", true},
		{"remote anywhere", "Remote - US", true},
		{"empty location", "", true},
		{"elsewhere", "Berlin, Germany", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.Evaluate(domain.JobPosting{Title: "Developer", Location: tt.location})
			assert.Equal(t, tt.accept, d.Accept)
			if !tt.accept {
				assert.Equal(t, ReasonLocation, d.Reason)
			}
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "montreal", Fold("Montréal"))
	assert.Equal(t, "quebec city", Fold("Québec City"))
}
