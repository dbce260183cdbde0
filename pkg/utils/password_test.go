package utils_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"biotrack/pkg/utils"
)

func TestBcryptHasher(t *testing.T) {
	h := utils.BcryptHasher{Cost: bcrypt.MinCost}

	hashed, err := h.Hash("Senha123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "Senha123" {
		t.Fatalf("password stored in clear")
	}
	if !h.Check("Senha123", hashed) {
		t.Fatalf("hash does not verify")
	}
	if h.Check("senha123", hashed) {
		t.Fatalf("wrong password verified")
	}

	other, _ := h.Hash("Senha123")
	if other == hashed {
		t.Fatalf("expected salted hashes to differ")
	}
}
