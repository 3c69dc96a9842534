package utils

import "testing"

func TestHashToken(t *testing.T) {
	hash, err := HashToken("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckTokenHash("s3cret", hash) {
		t.Fatal("expected hash to match its token")
	}
	if CheckTokenHash("guess", hash) {
		t.Fatal("expected wrong token to be rejected")
	}
	if _, err := HashToken(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
