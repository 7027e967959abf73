package password

import "testing"

func TestHashAndCheck(t *testing.T) {
	h, err := Hash("Sup3r$ecure99")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h == "Sup3r$ecure99" {
		t.Fatalf("hash equals plaintext")
	}

	if !Check(h, "Sup3r$ecure99") {
		t.Fatalf("Check rejected the correct password")
	}
	if Check(h, "wrong-password") {
		t.Fatalf("Check accepted a wrong password")
	}
}

func TestCheck_InvalidHash(t *testing.T) {
	if Check("not-a-bcrypt-hash", "anything") {
		t.Fatalf("Check accepted an invalid hash")
	}
}
