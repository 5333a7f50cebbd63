package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"applyflow/internal/domain"

	gonotion "github.com/dstotijn/go-notion"
)

// CreateTrackingDatabase creates the application-tracking database under the
// given page and returns its id. One-time setup; the id goes into config.
func CreateTrackingDatabase(ctx context.Context, token, parentPageID string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("notion token is required")
	}
	if parentPageID == "" {
		return "", fmt.Errorf("parent page id is required")
	}

	c := gonotion.NewClient(token, gonotion.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}))

	db, err := c.CreateDatabase(ctx, gonotion.CreateDatabaseParams{
		ParentPageID: parentPageID,
		Title:        richText("Job Applications"),
		Properties:   trackingSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("notion create database: %w", err)
	}
	return db.ID, nil
}

func trackingSchema() gonotion.DatabaseProperties {
	text := func() gonotion.DatabaseProperty {
		return gonotion.DatabaseProperty{Type: gonotion.DBPropTypeRichText, RichText: &gonotion.EmptyMetadata{}}
	}
	date := func() gonotion.DatabaseProperty {
		return gonotion.DatabaseProperty{Type: gonotion.DBPropTypeDate, Date: &gonotion.EmptyMetadata{}}
	}

	return gonotion.DatabaseProperties{
		"Job Title": {Type: gonotion.DBPropTypeTitle, Title: &gonotion.EmptyMetadata{}},
		"Company":   text(),
		"Location":  text(),
		"Job URL":   {Type: gonotion.DBPropTypeURL, URL: &gonotion.EmptyMetadata{}},
		"Status": {
			Type:   gonotion.DBPropTypeSelect,
			Select: &gonotion.SelectMetadata{Options: statusOptions()},
		},
		"Platform": {
			Type:   gonotion.DBPropTypeSelect,
			Select: &gonotion.SelectMetadata{Options: platformOptions()},
		},
		"Date Posted":       date(),
		"Applied At":        date(),
		"Resume Path":       text(),
		"Cover Letter Path": text(),
		"Notes":             text(),
	}
}

func statusOptions() []gonotion.SelectOptions {
	return []gonotion.SelectOptions{
		{Name: string(domain.StatusReadyToApply), Color: gonotion.ColorBlue},
		{Name: string(domain.StatusApplied), Color: gonotion.ColorYellow},
		{Name: string(domain.StatusInterview), Color: gonotion.ColorOrange},
		{Name: string(domain.StatusOffer), Color: gonotion.ColorGreen},
		{Name: string(domain.StatusRejected), Color: gonotion.ColorRed},
		{Name: string(domain.StatusError), Color: gonotion.ColorGray},
	}
}

func platformOptions() []gonotion.SelectOptions {
	return []gonotion.SelectOptions{
		{Name: domain.PlatformLinkedIn, Color: gonotion.ColorBlue},
		{Name: domain.PlatformGreenhouse, Color: gonotion.ColorGreen},
		{Name: domain.PlatformLever, Color: gonotion.ColorPurple},
		{Name: domain.PlatformSmartRecruiters, Color: gonotion.ColorOrange},
		{Name: domain.PlatformWorkday, Color: gonotion.ColorYellow},
		{Name: domain.PlatformUnknown, Color: gonotion.ColorGray},
	}
}
