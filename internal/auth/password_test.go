package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := hashPassword("Secret123")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if hash == "Secret123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !verifyPassword(hash, "Secret123") {
		t.Fatal("correct password rejected")
	}
	if verifyPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := hashPassword("same-password")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	h2, err := hashPassword("same-password")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}
