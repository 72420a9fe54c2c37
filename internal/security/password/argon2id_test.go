package password

import (
	"strings"
	"testing"
)

// Params livianos para no quemar CPU en tests.
var fast = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	phc, err := Hash(fast, "Password1!")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("formato PHC inesperado: %s", phc)
	}
	if !Verify("Password1!", phc) {
		t.Fatal("Verify: password correcto rechazado")
	}
	if Verify("wrong", phc) {
		t.Fatal("Verify: password incorrecto aceptado")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()
	for _, phc := range []string{
		"",
		"notaphc",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGsr",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$ZGsr",
	} {
		if Verify("x", phc) {
			t.Fatalf("Verify aceptó hash malformado: %q", phc)
		}
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	t.Parallel()
	if _, err := Hash(fast, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestPolicy(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy
	cases := []struct {
		pw string
		ok bool
	}{
		{"Password1!", true},
		{"short1!A", true},
		{"nouppercase1!", false},
		{"NOLOWERCASE1!", false},
		{"NoDigits!!", false},
		{"NoSymbol11", false},
		{"Sh1!", false},
		{strings.Repeat("Aa1!", 10), false}, // >32
	}
	for _, c := range cases {
		if got := p.Validate(c.pw); got != c.ok {
			t.Errorf("Validate(%q) = %v, want %v", c.pw, got, c.ok)
		}
	}
}
