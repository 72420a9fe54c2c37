package jwt

import (
	"testing"
	"time"
)

func testIssuer() *Issuer {
	return NewIssuer("access-secret", "refresh-secret", "reset-secret")
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	i := testIssuer()

	c := Claims{Email: "a@x.com", UserID: "u-1", UserName: "A"}
	for _, kind := range []Kind{KindAccess, KindRefresh, KindReset} {
		raw, exp, err := i.Issue(kind, c)
		if err != nil {
			t.Fatalf("Issue(%s) err: %v", kind, err)
		}
		if !exp.After(time.Now()) {
			t.Fatalf("Issue(%s): exp en el pasado", kind)
		}
		got, err := i.Verify(raw, kind)
		if err != nil {
			t.Fatalf("Verify(%s) err: %v", kind, err)
		}
		if got.Email != c.Email || got.UserID != c.UserID || got.UserName != c.UserName {
			t.Fatalf("claims mismatch: got %+v want %+v", got, c)
		}
	}
}

func TestVerify_CrossKindFails(t *testing.T) {
	t.Parallel()
	i := testIssuer()

	refresh, _, err := i.IssueRefresh(Claims{Email: "a@x.com", UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Verify(refresh, KindAccess); err != ErrTokenInvalid {
		t.Fatalf("refresh presentado como access: got %v want ErrTokenInvalid", err)
	}

	reset, _, err := i.IssueReset(Claims{Email: "a@x.com", UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Verify(reset, KindAccess); err != ErrTokenInvalid {
		t.Fatalf("reset presentado como access: got %v want ErrTokenInvalid", err)
	}
	if _, err := i.Verify(reset, KindRefresh); err != ErrTokenInvalid {
		t.Fatalf("reset presentado como refresh: got %v want ErrTokenInvalid", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	i := testIssuer()

	// Emitir con reloj corrido 2h hacia atrás: el reset (TTL 1h) queda vencido.
	i.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := i.IssueReset(Claims{Email: "a@x.com", UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	i.now = nil

	if _, err := i.Verify(raw, KindReset); err != ErrTokenExpired {
		t.Fatalf("got %v want ErrTokenExpired", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	i := testIssuer()

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := i.Verify(raw, KindAccess); err != ErrTokenInvalid {
			t.Fatalf("Verify(%q): got %v want ErrTokenInvalid", raw, err)
		}
	}

	// Token firmado con otro secreto aunque sea de la misma "forma".
	other := NewIssuer("otro", "otro", "otro")
	raw, _, err := other.IssueAccess(Claims{Email: "a@x.com", UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Verify(raw, KindAccess); err != ErrTokenInvalid {
		t.Fatalf("firma ajena: got %v want ErrTokenInvalid", err)
	}
}
