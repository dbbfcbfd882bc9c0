package verification

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	POST(path string, body any, address string, headers map[string]string) error
	GET(path string, address string) error
	ResponseString(field string) (string, error)
	SetRequestID(id string)
	RequestID() string
}

// RegisterSteps registers verification lifecycle step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^"([^"]*)" submits a level (\d) verification request with deposit (\d+) wei$`, steps.submit)
	ctx.Step(`^I save the verification request id$`, steps.saveRequestID)
	ctx.Step(`^"([^"]*)" asks the center to decide$`, steps.requestDecision)
	ctx.Step(`^the center reports the request (approved|declined)$`, steps.centerCallback)
	ctx.Step(`^"([^"]*)" withdraws the request$`, steps.withdraw)
	ctx.Step(`^"([^"]*)" checks their current verification$`, steps.current)
}

type verificationSteps struct {
	tc TestContext
}

func (s *verificationSteps) submit(address string, level, deposit int) error {
	// Any 32-byte digest works as a commitment; derive one from the address
	// so scenarios stay deterministic.
	digest := sha256.Sum256([]byte(address))
	body := map[string]any{
		"level":       level,
		"commitment":  hex.EncodeToString(digest[:]),
		"deposit_wei": deposit,
	}
	return s.tc.POST("/verification/requests", body, address, nil)
}

func (s *verificationSteps) saveRequestID() error {
	id, err := s.tc.ResponseString("id")
	if err != nil {
		return err
	}
	s.tc.SetRequestID(id)
	return nil
}

func (s *verificationSteps) requestDecision(address string) error {
	return s.tc.POST("/verification/requests/"+s.tc.RequestID()+"/decision", nil, address, nil)
}

func (s *verificationSteps) centerCallback(verdict string) error {
	body := map[string]any{
		"approved": verdict == "approved",
		"verifier": "e2e-center",
	}
	headers := map[string]string{
		"X-Center-Secret": os.Getenv("CENTER_SECRET"),
	}
	return s.tc.POST("/verification/requests/"+s.tc.RequestID()+"/callback", body, "", headers)
}

func (s *verificationSteps) withdraw(address string) error {
	return s.tc.POST("/verification/requests/"+s.tc.RequestID()+"/withdraw", nil, address, nil)
}

func (s *verificationSteps) current(address string) error {
	return s.tc.GET("/verification/current", address)
}
