package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeURLStripsTrackingParams(t *testing.T) {
	got := CanonicalizeURL("https://Example.com/careers/123?utm_source=li&b=2&a=1&gclid=xyz#apply")
	assert.Equal(t, "https://example.com/careers/123?a=1&b=2", got)
}

func TestCanonicalizeURLLinkedInJobView(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "alert email comm link",
			in:   "https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=xyz&refId=abc",
			want: "https://www.linkedin.com/jobs/view/4012345678/",
		},
		{
			name: "plain job view with query",
			in:   "https://www.linkedin.com/jobs/view/4012345678?alternateChannel=search",
			want: "https://www.linkedin.com/jobs/view/4012345678/",
		},
		{
			name: "search page keeps currentJobId only",
			in:   "https://www.linkedin.com/jobs/search/?currentJobId=999&keywords=go&utm_campaign=x",
			want: "https://www.linkedin.com/jobs/search/?currentJobId=999",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanonicalizeURL(tc.in))
		})
	}
}

func TestCanonicalizeURLEdgeCases(t *testing.T) {
	assert.Equal(t, "", CanonicalizeURL("   "))
	assert.Equal(t, "://bad", CanonicalizeURL("://bad"))
}

func TestIsJunkURL(t *testing.T) {
	assert.True(t, IsJunkURL("https://www.linkedin.com/e/v2?e=unsubscribe&t=plh"))
	assert.True(t, IsJunkURL("https://www.linkedin.com/comm/jobs/alerts/manage"))
	assert.True(t, IsJunkURL("https://example.com/email-preferences"))
	assert.False(t, IsJunkURL("https://www.linkedin.com/jobs/view/4012345678/"))
	assert.False(t, IsJunkURL("https://boards.greenhouse.io/acme/jobs/123"))
}
