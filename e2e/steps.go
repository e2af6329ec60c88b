// Package e2e drives a running govdash instance through Gherkin features.
// Point GOVDASH_E2E_BASE_URL at the server; the analytics backend behind it
// must carry the seeded demo accounts.
package e2e

import (
	"github.com/cucumber/godog"

	"govdash/e2e/steps/common"
	"govdash/e2e/steps/ratelimit"
	"govdash/e2e/steps/session"
)

// RegisterSteps registers all step definitions from the step packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	session.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
