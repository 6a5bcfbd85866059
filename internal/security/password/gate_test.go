package password_test

import (
	"testing"

	"github.com/5w1tchy/library-api/internal/security/password"
)

func TestGateVerify(t *testing.T) {
	gate, err := password.NewGate("secretpass")
	if err != nil {
		t.Fatal(err)
	}

	ok, err := gate.Verify("secretpass")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("shared passphrase must verify")
	}

	for _, wrong := range []string{"", "secret", "secretpass ", "SECRETPASS"} {
		ok, err := gate.Verify(wrong)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatalf("%q must not verify", wrong)
		}
	}
}
