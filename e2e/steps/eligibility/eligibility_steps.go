package eligibility

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	GET(path string, address string) error
	ResponseField(field string) (any, error)
	GigID() string
}

// RegisterSteps registers eligibility evaluation step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &eligibilitySteps{tc: tc}

	ctx.Step(`^"([^"]*)" checks eligibility for the gig$`, steps.check)
	ctx.Step(`^an anonymous caller checks eligibility for the gig$`, steps.checkAnonymous)
	ctx.Step(`^access should be (allowed|denied) with reason "([^"]*)"$`, steps.assertDecision)
}

type eligibilitySteps struct {
	tc TestContext
}

func (s *eligibilitySteps) check(address string) error {
	return s.tc.GET("/eligibility/gigs/"+s.tc.GigID(), address)
}

func (s *eligibilitySteps) checkAnonymous() error {
	return s.tc.GET("/eligibility/gigs/"+s.tc.GigID(), "")
}

func (s *eligibilitySteps) assertDecision(verdict, reason string) error {
	allowed, err := s.tc.ResponseField("allowed")
	if err != nil {
		return err
	}
	if wantAllowed := verdict == "allowed"; allowed != wantAllowed {
		return fmt.Errorf("expected allowed=%v, got %v", wantAllowed, allowed)
	}
	got, err := s.tc.ResponseField("reason")
	if err != nil {
		return err
	}
	if got != reason {
		return fmt.Errorf("expected reason %q, got %v", reason, got)
	}
	return nil
}
