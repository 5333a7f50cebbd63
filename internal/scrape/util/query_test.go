package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesAnyQuery(t *testing.T) {
	queries := []string{"backend engineer", "software engineer"}

	assert.True(t, MatchesAnyQuery(queries, "Senior Backend Engineer, Payments"))
	assert.True(t, MatchesAnyQuery(queries, "Engineer", "We are hiring a Software Engineer to join..."))
	assert.False(t, MatchesAnyQuery(queries, "Account Executive", "sales role"))
	assert.True(t, MatchesAnyQuery(nil, "Anything At All"))
	assert.True(t, MatchesAnyQuery([]string{"  "}, "anything"), "blank queries are ignored, not matched")
}
