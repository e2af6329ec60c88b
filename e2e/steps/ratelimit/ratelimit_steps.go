package ratelimit

import (
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

type TestContext interface {
	POST(path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseHeader() http.Header
	SetClientIP(ip string)
}

// RegisterSteps registers login throttling steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}
	ctx.Step(`^I am connecting from IP "([^"]*)"$`, steps.fromIP)
	ctx.Step(`^I fail to sign in (\d+) times$`, steps.failSignIn)
	ctx.Step(`^the response should carry a Retry-After header$`, steps.retryAfter)
}

type ratelimitSteps struct {
	tc TestContext
}

func (s *ratelimitSteps) fromIP(ip string) error {
	s.tc.SetClientIP(ip)
	return nil
}

func (s *ratelimitSteps) failSignIn(times int) error {
	for i := range times {
		if err := s.tc.POST("/api/session", map[string]string{
			"user_id":  "admin",
			"password": "not-the-password",
		}); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status == http.StatusTooManyRequests {
			return fmt.Errorf("throttled early at attempt %d", i+1)
		}
	}
	return nil
}

func (s *ratelimitSteps) retryAfter() error {
	if s.tc.GetLastResponseHeader().Get("Retry-After") == "" {
		return fmt.Errorf("no Retry-After header")
	}
	return nil
}
