package tailor

import (
	"fmt"
	"unicode/utf8"

	"applyflow/internal/domain"
)

// KeywordReportDelimiter separates the LaTeX source from the keyword
// report in the model's resume response.
const KeywordReportDelimiter = "===KEYWORD_REPORT==="

// missingReport is emitted when the model ignores the delimiter
// instruction and returns only the resume.
const missingReport = "Keyword report not generated."

const (
	resumeDescriptionLimit      = 6000
	coverLetterDescriptionLimit = 5000
	resumeMaxTokens             = 4096
	coverLetterMaxTokens        = 1024
)

const resumeSystemPrompt = `You are an expert technical resume editor for software engineering and data roles.
You will receive:
1. A LaTeX resume source
2. A job description
3. The candidate's background

Edit the LaTeX resume to maximize relevance for this specific role.

RULES - what you MAY do:
- Reword bullet points to mirror the job description's own language
- Reorder bullet points within a role, most relevant first
- Adjust a role title when the actual work genuinely supports the new title
- Add realistic, conservative metrics where missing (%, time saved, scale, reliability)
- Strengthen action verbs (built, implemented, optimized, automated, designed)
- Rewrite the objective section to match the role exactly
- Edit the technical skills section to mirror keywords from the job description
- Reorder skill categories so the most relevant surface first

RULES - what you MUST NOT do:
- Do not invent experiences, projects, or companies that do not exist
- Do not change employment dates
- Do not fabricate degrees or certifications
- Do not break LaTeX syntax; the output must compile cleanly
- Do not add any explanation or commentary

METRICS GUIDELINES:
- Performance: "reduced latency by 25%", "improved query performance by 40%"
- Productivity: "cut manual effort by 35%", "automated 80% of reporting workflow"
- Scale: "served 5k+ users", "processed 1M+ records daily"
- Reliability: "maintained 99.9% uptime"
Keep metrics believable and conservative.

OUTPUT FORMAT:
Return ONLY the complete, valid LaTeX source. No markdown, no explanation, no backticks.`

const coverLetterSystemPrompt = `You are an expert cover letter writer for software engineering and data roles.
Write a compelling, concise cover letter (3-4 paragraphs) for the candidate below.

TONE: Professional but personable. Confident. Not generic.
LENGTH: 250-350 words maximum.
FORMAT: Plain paragraphs only. No bullet points, no headers, no salutation or
sign-off (the document template supplies those).

STRUCTURE:
Paragraph 1 - Hook: why this role and this company specifically. Show you know them.
Paragraph 2 - What you bring: 2-3 concrete examples tied directly to the job
requirements, with specific technologies, metrics, and outcomes from the
candidate's background.
Paragraph 3 - Forward-looking: what you would contribute in the first 90 days,
optionally closing with enthusiasm for a conversation.

DO NOT:
- Use cliches like "I am writing to express my interest..."
- Repeat resume bullet points verbatim
- Be generic; reference the company and role specifically
- Output anything other than the cover letter body paragraphs
- Do not include em-dashes in the output`

func resumePrompt(job domain.JobPosting, baseTeX, profile string) string {
	return fmt.Sprintf(`Job Title: %s
Company: %s
Location: %s

--- JOB DESCRIPTION START ---
%s
--- JOB DESCRIPTION END ---

--- CANDIDATE PROFILE ---
%s

--- CURRENT LATEX RESUME ---
%s

Tailor the LaTeX resume above for this specific role.
After the LaTeX, on a NEW LINE write exactly:
%s
Then list the top 10 keywords from the job description and where each appears
in the resume. Format each line as: keyword -> section (or "not present")`,
		job.Title, job.Company, job.Location,
		truncate(orNoDescription(job.Description), resumeDescriptionLimit),
		profile, baseTeX, KeywordReportDelimiter)
}

func coverLetterPrompt(job domain.JobPosting, profile string) string {
	return fmt.Sprintf(`Job Title: %s
Company: %s
Location: %s

--- JOB DESCRIPTION ---
%s

--- CANDIDATE PROFILE ---
%s

Write the cover letter body paragraphs now.`,
		job.Title, job.Company, job.Location,
		truncate(orNoDescription(job.Description), coverLetterDescriptionLimit),
		profile)
}

func orNoDescription(s string) string {
	if s == "" {
		return "No description available."
	}
	return s
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
