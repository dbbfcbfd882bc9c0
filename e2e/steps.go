package e2e

import (
	"github.com/cucumber/godog"

	"giggate/e2e/steps/common"
	"giggate/e2e/steps/eligibility"
	"giggate/e2e/steps/gig"
	"giggate/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	gig.RegisterSteps(ctx, tc)
	verification.RegisterSteps(ctx, tc)
	eligibility.RegisterSteps(ctx, tc)
}
