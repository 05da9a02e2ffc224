package crypto

import (
	"strings"
	"testing"
)

func TestHeadersAt_Deterministic(t *testing.T) {
	auth := &HMACAuth{Key: "key-123", Secret: "secret"}

	first := auth.HeadersAt("POST", "/orders", `{"marketId":"m1"}`, 1700000000)
	second := auth.HeadersAt("POST", "/orders", `{"marketId":"m1"}`, 1700000000)

	if first["X-API-KEY"] != "key-123" {
		t.Errorf("api key header = %q", first["X-API-KEY"])
	}
	if first["X-API-TIMESTAMP"] != "1700000000" {
		t.Errorf("timestamp header = %q", first["X-API-TIMESTAMP"])
	}
	if first["X-API-SIGNATURE"] == "" {
		t.Fatal("signature header is empty")
	}
	if first["X-API-SIGNATURE"] != second["X-API-SIGNATURE"] {
		t.Error("same inputs must produce the same signature")
	}
}

func TestHeadersAt_SignatureCoversPathAndBody(t *testing.T) {
	auth := &HMACAuth{Key: "k", Secret: "s"}

	base := auth.HeadersAt("GET", "/markets", "", 1)
	otherPath := auth.HeadersAt("GET", "/orders", "", 1)
	otherBody := auth.HeadersAt("GET", "/markets", "x", 1)

	if base["X-API-SIGNATURE"] == otherPath["X-API-SIGNATURE"] {
		t.Error("signature must change with the path")
	}
	if base["X-API-SIGNATURE"] == otherBody["X-API-SIGNATURE"] {
		t.Error("signature must change with the body")
	}
}

func TestString_RedactsSecrets(t *testing.T) {
	auth := &HMACAuth{Key: "key-123456", Secret: "super-secret"}
	s := auth.String()
	if strings.Contains(s, "secret") && strings.Contains(s, "super-secret") {
		t.Errorf("String leaked secret: %s", s)
	}
	if !strings.Contains(s, "****") {
		t.Errorf("String not redacted: %s", s)
	}
}
