package utils

import "testing"

func TestSessionJWTRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := SignSessionJWT("secret", "sess-9", 42, "worker", 60)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseSessionJWT("secret", token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.SessionID != "sess-9" || claims.UserID != 42 || claims.UserType != "worker" {
		t.Fatalf("claims lost in round trip: %+v", claims)
	}
}

func TestSessionJWTWrongSecretRejected(t *testing.T) {
	t.Parallel()

	token, err := SignSessionJWT("secret", "sess-9", 42, "worker", 60)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSessionJWT("other-secret", token); err == nil {
		t.Fatal("expected signature verification failure")
	}
}

func TestSessionJWTExpiredRejected(t *testing.T) {
	t.Parallel()

	token, err := SignSessionJWT("secret", "sess-9", 42, "worker", -1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSessionJWT("secret", token); err == nil {
		t.Fatal("expected expired token rejection")
	}
}
