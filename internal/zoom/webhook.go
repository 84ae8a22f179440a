package zoom

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// VerifySignature checks a webhook request's HMAC signature. Zoom signs
// the string "v0:{timestamp}:{body}" with the app's webhook secret and
// sends "v0={hex}" in the x-zm-signature header.
func VerifySignature(secret, timestamp string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}

// ValidationResponse answers Zoom's endpoint.url_validation challenge:
// the plain token is echoed back together with its HMAC under the webhook
// secret.
type ValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// Validate computes the url_validation response for a challenge token.
func Validate(secret, plainToken string) ValidationResponse {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(plainToken))

	return ValidationResponse{
		PlainToken:     plainToken,
		EncryptedToken: hex.EncodeToString(mac.Sum(nil)),
	}
}

// WebhookEvent is the envelope of every Zoom webhook delivery.
type WebhookEvent struct {
	Event   string         `json:"event"`
	EventTS int64          `json:"event_ts"`
	Payload WebhookPayload `json:"payload"`
}

// WebhookPayload carries the event-specific body. Object is populated for
// recording and meeting events; PlainToken for url_validation challenges.
type WebhookPayload struct {
	AccountID  string         `json:"account_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	PlainToken string         `json:"plainToken,omitempty"`
	Object     *WebhookObject `json:"object,omitempty"`
}

// WebhookObject is the meeting the event refers to.
type WebhookObject struct {
	UUID      string `json:"uuid"`
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	HostEmail string `json:"host_email"`
	StartTime string `json:"start_time"`
}
