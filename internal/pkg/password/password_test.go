package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !Verify("secret-password", hash) {
		t.Error("correct password should verify")
	}
	if Verify("wrong-password", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")

	if a == b {
		t.Error("different tokens should hash differently")
	}
	if a != HashToken("token-a") {
		t.Error("token hashing must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("hash length %d, want 64 hex chars", len(a))
	}
}

func TestValidate(t *testing.T) {
	if Validate("short") {
		t.Error("passwords under 8 chars should be rejected")
	}
	if !Validate("longenough") {
		t.Error("passwords of 8+ chars should pass")
	}
}
