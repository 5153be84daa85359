package linkedin

import "github.com/pkg/errors"

// FieldChallengeID is the input whose presence marks a 2FA challenge page.
const FieldChallengeID = "challengeId"

// challengeFieldNames is the fixed set of hidden inputs the verify endpoint
// expects to be echoed back from the challenge page.
var challengeFieldNames = []string{
	"csrfToken",
	"pageInstance",
	"resendUrl",
	"challengeId",
	"displayTime",
	"challengeSource",
	"requestSubmissionId",
	"challengeType",
	"challengeData",
	"challengeDetails",
	"failureRedirectUri",
}

// ChallengeFields holds everything extracted from a 2FA challenge page,
// ready to be posted back to the verify endpoint once the user supplies the
// one-time code.
type ChallengeFields map[string]string

// IsChallenge reports whether the page is a two-factor challenge.
func IsChallenge(html string) bool {
	return HasField(html, FieldChallengeID)
}

// ExtractChallenge pulls the fixed challenge field set out of a challenge
// page and attaches the fixed locale. Any missing field aborts the step.
func ExtractChallenge(html string) (ChallengeFields, error) {
	fields := make(ChallengeFields, len(challengeFieldNames)+1)
	for _, name := range challengeFieldNames {
		value, err := ExtractField(html, name)
		if err != nil {
			return nil, errors.Wrap(err, "[ExtractChallenge]")
		}
		fields[name] = value
	}
	fields["language"] = "en-US"
	return fields, nil
}

// WithPin returns the verify form payload: every stored challenge field plus
// the user's code as pin. The receiver is not modified.
func (c ChallengeFields) WithPin(code string) map[string]string {
	payload := make(map[string]string, len(c)+1)
	for name, value := range c {
		payload[name] = value
	}
	payload["pin"] = code
	return payload
}
