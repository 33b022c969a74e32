package util_test

import (
	"testing"
	"time"

	"mentorprog_backend/internal/model"
	"mentorprog_backend/internal/util"
)

func TestLedgerKeyFallback(t *testing.T) {
	tests := []struct {
		name   string
		claims util.Claims
		want   string
	}{
		{"numeric id wins", util.Claims{UserID: 42, UID: "legacy", Email: "a@b.c"}, "42"},
		{"uid when no id", util.Claims{UID: "legacy", Email: "a@b.c"}, "legacy"},
		{"email as last resort", util.Claims{Email: "a@b.c"}, "a@b.c"},
		{"nothing usable", util.Claims{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.claims.LedgerKey(); got != tc.want {
				t.Fatalf("LedgerKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  model.Student,
	}
	user.ID = 7

	token, err := util.GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "ana@example.com" || claims.Role != model.Student {
		t.Fatalf("claims round trip wrong: %+v", claims)
	}
	if claims.LedgerKey() != "7" {
		t.Fatalf("LedgerKey = %q, want 7", claims.LedgerKey())
	}

	if _, err := util.ParseJWT(token, "wrong-secret"); err == nil {
		t.Fatal("wrong secret must fail verification")
	}
}
