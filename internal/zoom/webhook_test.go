package zoom

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "webhook-secret"
	timestamp := "1700000000"
	body := []byte(`{"event":"recording.completed"}`)

	header := signBody(secret, timestamp, body)

	if !VerifySignature(secret, timestamp, body, header) {
		t.Error("valid signature rejected")
	}
	if VerifySignature(secret, timestamp, body, "v0=deadbeef") {
		t.Error("forged signature accepted")
	}
	if VerifySignature(secret, "1700000001", body, header) {
		t.Error("signature accepted with altered timestamp")
	}
	if VerifySignature(secret, timestamp, []byte(`{}`), header) {
		t.Error("signature accepted with altered body")
	}
	if VerifySignature(secret, timestamp, body, "") {
		t.Error("empty header accepted")
	}
	if VerifySignature("", timestamp, body, header) {
		t.Error("empty secret accepted")
	}
}

func TestValidate(t *testing.T) {
	resp := Validate("webhook-secret", "challenge-token")

	if resp.PlainToken != "challenge-token" {
		t.Errorf("plain token = %q, want echoed challenge", resp.PlainToken)
	}

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write([]byte("challenge-token"))
	want := hex.EncodeToString(mac.Sum(nil))

	if resp.EncryptedToken != want {
		t.Errorf("encrypted token = %q, want %q", resp.EncryptedToken, want)
	}
}
