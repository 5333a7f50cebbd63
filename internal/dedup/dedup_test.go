package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applyflow/internal/domain"
)

func job(url, company, title string) domain.JobPosting {
	return domain.JobPosting{URL: url, Company: company, Title: title}
}

func TestDedupeByURL(t *testing.T) {
	in := []domain.JobPosting{
		job("https://a.example/1", "Acme", "Developer"),
		job("https://a.example/1", "Acme Inc", "Dev II"),
		job("https://a.example/2", "Beta", "Engineer"),
	}

	out := Dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "Beta", out[1].Company)
}

func TestDedupeByCompanyTitle(t *testing.T) {
	in := []domain.JobPosting{
		job("https://boards.example/acme/1", "Acme", "Developer"),
		job("https://alerts.example/view/99", "Acme", "Developer"),
		job("https://boards.example/acme/2", "Acme", "Designer"),
	}

	out := Dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "https://boards.example/acme/1", out[0].URL)
	assert.Equal(t, "Designer", out[1].Title)
}

func TestDedupeCaseInsensitivePair(t *testing.T) {
	in := []domain.JobPosting{
		job("https://x.example/1", "Acme", "Developer"),
		job("https://x.example/2", "ACME", "developer"),
	}

	out := Dedupe(in)
	require.Len(t, out, 1)
	assert.Equal(t, "https://x.example/1", out[0].URL)
}

func TestDedupePreservesOrder(t *testing.T) {
	in := []domain.JobPosting{
		job("u3", "C", "T3"),
		job("u1", "A", "T1"),
		job("u3", "C", "T3 dup"),
		job("u2", "B", "T2"),
	}

	out := Dedupe(in)

	require.Len(t, out, 3)
	assert.Equal(t, "u3", out[0].URL)
	assert.Equal(t, "u1", out[1].URL)
	assert.Equal(t, "u2", out[2].URL)
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}
