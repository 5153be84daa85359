package linkedin_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matrix-connect/linkedin-bridge/linkedin"
	"github.com/stretchr/testify/require"
)

// challengeValues are the hidden inputs of a representative challenge page.
var challengeValues = map[string]string{
	"csrfToken":           "ajax:42",
	"pageInstance":        "urn:li:page:checkpoint_challenge",
	"resendUrl":           "/checkpoint/challenge/resend",
	"challengeId":         "AQE6Yk2Jp",
	"displayTime":         "2021-06-01 10:00:00",
	"challengeSource":     "2FA",
	"requestSubmissionId": "sub-9",
	"challengeType":       "SMS_PIN",
	"challengeData":       "data-blob",
	"challengeDetails":    "details-blob",
	"failureRedirectUri":  "https://www.linkedin.com/uas/login",
}

func challengePage() string {
	var b strings.Builder
	b.WriteString(`<html><body><form action="/checkpoint/challenge/verify" method="POST">`)
	for name, value := range challengeValues {
		fmt.Fprintf(&b, `<input type="hidden" name=%q value=%q/>`, name, value)
	}
	b.WriteString(`<input type="text" name="pin"/></form></body></html>`)
	return b.String()
}

func TestIsChallenge(t *testing.T) {
	require.True(t, linkedin.IsChallenge(challengePage()))
	require.False(t, linkedin.IsChallenge(seedPage))
}

func TestExtractChallenge(t *testing.T) {
	fields, err := linkedin.ExtractChallenge(challengePage())
	require.NoError(t, err)

	require.Len(t, fields, len(challengeValues)+1)
	for name, value := range challengeValues {
		require.Equal(t, value, fields[name], name)
	}
	require.Equal(t, "en-US", fields["language"])
}

func TestExtractChallengeMissingField(t *testing.T) {
	page := strings.Replace(challengePage(), `name="requestSubmissionId"`, `name="somethingElse"`, 1)
	_, err := linkedin.ExtractChallenge(page)
	require.ErrorIs(t, err, linkedin.ErrFieldNotFound)
}

func TestWithPinDoesNotMutate(t *testing.T) {
	fields, err := linkedin.ExtractChallenge(challengePage())
	require.NoError(t, err)

	payload := fields.WithPin("1234")
	require.Equal(t, "1234", payload["pin"])
	require.Equal(t, fields["csrfToken"], payload["csrfToken"])
	require.NotContains(t, fields, "pin")
}
