package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Software Engineer II", CleanText("  Software Engineer \n\t II "))
	assert.Equal(t, "", CleanText("    "))
}

func TestNormalizeLocation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Toronto, ON, Canada, Toronto", "Toronto, ON, Canada"},
		{"Location: Remote - Canada", "Remote - Canada"},
		{"  Vancouver ,  BC ", "Vancouver, BC"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeLocation(tc.in), "input %q", tc.in)
	}
}

func TestExtractLocationFromLabeledText(t *testing.T) {
	assert.Equal(t, "Vancouver, BC", ExtractLocationFromLabeledText("Acme is hiring. Location: Vancouver, BC | Full-time"))
	assert.Equal(t, "Montreal", ExtractLocationFromLabeledText("Job Location: Montreal\nTeam: Platform"))
	assert.Equal(t, "", ExtractLocationFromLabeledText("no labels here"))
}
