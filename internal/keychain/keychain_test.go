package keychain

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	keyring.MockInit()

	if err := Set(TokenAccount, "123:abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := Get(TokenAccount)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "123:abc" {
		t.Errorf("got %q, want 123:abc", got)
	}
}

func TestGetMissing(t *testing.T) {
	keyring.MockInit()

	got, err := Get("nobody")
	if err != nil {
		t.Fatalf("missing entry returned error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
