package session

import (
	"fmt"

	"github.com/cucumber/godog"
)

type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers sign-in and sign-out steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &sessionSteps{tc: tc}
	ctx.Step(`^I sign in as "([^"]*)" with password "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I am signed in as "([^"]*)" with password "([^"]*)"$`, steps.signedIn)
	ctx.Step(`^I keep the session token$`, steps.keepToken)
	ctx.Step(`^I use the token "([^"]*)"$`, steps.useToken)
}

type sessionSteps struct {
	tc TestContext
}

func (s *sessionSteps) signIn(userID, password string) error {
	return s.tc.POST("/api/session", map[string]string{
		"user_id":  userID,
		"password": password,
	})
}

func (s *sessionSteps) signedIn(userID, password string) error {
	if err := s.signIn(userID, password); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("sign in as %s: status %d: %s", userID, status, s.tc.GetLastResponseBody())
	}
	return s.keepToken()
}

func (s *sessionSteps) keepToken() error {
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok || str == "" {
		return fmt.Errorf("token is not a non-empty string: %v", token)
	}
	s.tc.SetAccessToken(str)
	return nil
}

func (s *sessionSteps) useToken(token string) error {
	s.tc.SetAccessToken(token)
	return nil
}
