package email_scrape

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"applyflow/internal/domain"
	"applyflow/internal/scrape/types"

	"github.com/emersion/go-imap/v2"
)

// Config is what the fetcher needs to read one alert mailbox.
type Config struct {
	Addr     string // host:port
	Username string
	Password string
	Mailbox  string   // default INBOX
	Senders  []string // only messages from these addresses are touched
}

// Fetcher reads unseen LinkedIn job-alert mail and turns each alert into
// postings. Processed messages are marked \Seen so the next run skips them;
// unrelated unseen mail is left exactly as it was.
type Fetcher struct {
	cfg Config

	// Log receives per-message progress; nil means log.Default.
	Log *log.Logger
}

func New(cfg Config) *Fetcher {
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string { return "email" }

func (f *Fetcher) Fetch(ctx context.Context, opts types.Options) ([]domain.JobPosting, error) {
	const maxEmails = 200

	if f.cfg.Addr == "" || f.cfg.Username == "" || f.cfg.Password == "" {
		return nil, errors.New("imap addr/username/password is required")
	}

	c, err := DialAndLoginIMAP(ctx, f.cfg.Addr, f.cfg.Username, f.cfg.Password, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := LogoutAndClose(c); err != nil {
			f.logf("[email] logout: %v", err)
		}
	}()

	if err := SelectMailbox(c, f.cfg.Mailbox); err != nil {
		return nil, err
	}

	var since time.Time
	if opts.Window > 0 {
		since = time.Now().Add(-opts.Window)
	}

	msgs, err := FetchUnseen(ctx, c, since, maxEmails)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	var out []domain.JobPosting
	processed := make([]imap.UID, 0, len(msgs))

scan:
	for _, m := range msgs {
		if ctx.Err() != nil {
			break
		}
		if len(f.cfg.Senders) > 0 && !containsAnyCI(m.From, f.cfg.Senders) {
			continue
		}

		bodyText, htmlBody, subj := parseRFC822(m.RawMessage, m.Subject)
		subj = decodeRFC2047(subj)

		body := htmlBody
		if body == "" {
			body = bodyText
		}

		jobs, perr := ParseLinkedInJobAlertHTML(body)
		if perr != nil {
			f.logf("[email] parse uid=%d subject=%q err=%v", m.UID, subj, perr)
			continue
		}
		f.logf("[email] uid=%d subject=%q jobs=%d", m.UID, subj, len(jobs))

		for _, lj := range jobs {
			out = append(out, toPosting(lj, m.Date))
			if opts.MaxPerSource > 0 && len(out) >= opts.MaxPerSource {
				processed = append(processed, m.UID)
				break scan
			}
		}
		processed = append(processed, m.UID)
	}

	if err := MarkSeen(c, processed); err != nil {
		f.logf("[email] mark seen: %v", err)
	}

	return out, nil
}

func (f *Fetcher) logf(format string, args ...any) {
	l := f.Log
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

func toPosting(lj LinkedInJob, receivedAt time.Time) domain.JobPosting {
	p := domain.JobPosting{
		Title:     lj.Title,
		Company:   lj.Company,
		Location:  lj.Location,
		URL:       lj.URL,
		Platform:  domain.PlatformLinkedIn,
		ScrapedAt: time.Now().UTC(),
		Status:    domain.StatusNew,
	}
	if !receivedAt.IsZero() {
		t := receivedAt.UTC()
		p.PostedAt = &t
	}
	if lj.Salary != "" {
		p.CompMin, p.CompMax, p.Currency = ParseSalaryRange(lj.Salary)
	}
	return p
}

func containsAnyCI(s string, needles []string) bool {
	l := strings.ToLower(s)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(l, n) {
			return true
		}
	}
	return false
}
