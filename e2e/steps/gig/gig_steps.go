package gig

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	POST(path string, body any, address string, headers map[string]string) error
	GET(path string, address string) error
	ResponseString(field string) (string, error)
	SetGigID(id string)
	GigID() string
}

// RegisterSteps registers gig registry step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gigSteps{tc: tc}

	ctx.Step(`^"([^"]*)" posts a gig titled "([^"]*)" requiring trust score ([0-9.]+)$`, steps.postGig)
	ctx.Step(`^I save the gig id$`, steps.saveGigID)
	ctx.Step(`^"([^"]*)" deactivates the gig$`, steps.deactivateGig)
	ctx.Step(`^anyone fetches the gig$`, steps.fetchGig)
	ctx.Step(`^anyone lists active gigs filtered by type "([^"]*)"$`, steps.listByType)
}

type gigSteps struct {
	tc TestContext
}

func (s *gigSteps) postGig(address, title string, minScore string) error {
	score, err := strconv.ParseFloat(minScore, 64)
	if err != nil {
		return fmt.Errorf("bad trust score %q: %w", minScore, err)
	}
	body := map[string]any{
		"title":           title,
		"description":     "scenario posting",
		"types":           []string{"e2e"},
		"bounty_wei":      1_000_000_000_000_000,
		"min_trust_score": score,
	}
	return s.tc.POST("/gigs", body, address, nil)
}

func (s *gigSteps) saveGigID() error {
	id, err := s.tc.ResponseString("id")
	if err != nil {
		return err
	}
	s.tc.SetGigID(id)
	return nil
}

func (s *gigSteps) deactivateGig(address string) error {
	return s.tc.POST("/gigs/"+s.tc.GigID()+"/deactivate", nil, address, nil)
}

func (s *gigSteps) fetchGig() error {
	return s.tc.GET("/gigs/"+s.tc.GigID(), "")
}

func (s *gigSteps) listByType(tag string) error {
	return s.tc.GET("/gigs?type="+tag, "")
}
