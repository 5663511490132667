package token

import (
	"errors"
	"testing"
	"time"

	"github.com/banmai/schoolgate/internal/config"
)

func testConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessSecret:       "test-access-secret-minimum-32-ch",
		RefreshSecret:      "test-refresh-secret-minimum-32-c",
		AccessTTL:          time.Hour,
		RefreshTTL:         720 * time.Hour,
		RefreshedAccessTTL: 30 * time.Minute,
		VerifiedAccessTTL:  5 * time.Minute,
	}
}

func testIdentity() Identity {
	return Identity{
		ID:          "u1",
		Role:        "PARENT",
		DisplayName: "Tran Van A",
		Email:       "parent@example.com",
		Phone:       "+84912345678",
	}
}

func TestService_IssueVerifyRoundTrip(t *testing.T) {
	service := NewService(testConfig())
	identity := testIdentity()

	signed, expiry, err := service.IssueAccess(identity)
	if err != nil {
		t.Fatalf("IssueAccess() failed: %v", err)
	}

	if signed == "" {
		t.Fatal("IssueAccess() returned empty token")
	}

	// Expiry should be approximately 1 hour from now
	expected := time.Now().Add(time.Hour)
	if diff := expiry.Sub(expected).Abs(); diff > time.Minute {
		t.Errorf("expiry = %v, expected around %v (diff: %v)", expiry, expected, diff)
	}

	claims, err := service.VerifyAccess(signed)
	if err != nil {
		t.Fatalf("VerifyAccess() failed: %v", err)
	}

	if claims.Identity != identity {
		t.Errorf("Identity = %+v, want %+v", claims.Identity, identity)
	}

	if claims.Subject != "u1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "u1")
	}

	if claims.ID == "" {
		t.Error("JTI (ID) is empty")
	}
}

func TestService_RefreshRoundTrip(t *testing.T) {
	service := NewService(testConfig())
	identity := testIdentity()

	signed, expiry, err := service.IssueRefresh(identity)
	if err != nil {
		t.Fatalf("IssueRefresh() failed: %v", err)
	}

	expected := time.Now().Add(720 * time.Hour)
	if diff := expiry.Sub(expected).Abs(); diff > time.Minute {
		t.Errorf("expiry = %v, expected around %v (diff: %v)", expiry, expected, diff)
	}

	claims, err := service.VerifyRefresh(signed)
	if err != nil {
		t.Fatalf("VerifyRefresh() failed: %v", err)
	}

	if claims.Identity != identity {
		t.Errorf("Identity = %+v, want %+v", claims.Identity, identity)
	}
}

func TestService_KindsAreNotInterchangeable(t *testing.T) {
	service := NewService(testConfig())
	identity := testIdentity()

	accessToken, _, err := service.IssueAccess(identity)
	if err != nil {
		t.Fatalf("IssueAccess() failed: %v", err)
	}

	refreshToken, _, err := service.IssueRefresh(identity)
	if err != nil {
		t.Fatalf("IssueRefresh() failed: %v", err)
	}

	if _, err := service.VerifyRefresh(accessToken); !errors.Is(err, ErrInvalid) {
		t.Errorf("VerifyRefresh(access token) error = %v, want ErrInvalid", err)
	}

	if _, err := service.VerifyAccess(refreshToken); !errors.Is(err, ErrInvalid) {
		t.Errorf("VerifyAccess(refresh token) error = %v, want ErrInvalid", err)
	}
}

func TestService_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = -time.Minute // already expired when issued
	service := NewService(cfg)

	signed, _, err := service.IssueAccess(testIdentity())
	if err != nil {
		t.Fatalf("IssueAccess() failed: %v", err)
	}

	_, err = service.VerifyAccess(signed)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("VerifyAccess() error = %v, want ErrExpired", err)
	}
}

func TestService_IssueAccessFor(t *testing.T) {
	service := NewService(testConfig())

	signed, expiry, err := service.IssueAccessFor(testIdentity(), 5*time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessFor() failed: %v", err)
	}

	expected := time.Now().Add(5 * time.Minute)
	if diff := expiry.Sub(expected).Abs(); diff > time.Minute {
		t.Errorf("expiry = %v, expected around %v (diff: %v)", expiry, expected, diff)
	}

	if _, err := service.VerifyAccess(signed); err != nil {
		t.Errorf("VerifyAccess() failed: %v", err)
	}
}

func TestService_VerifyMalformed(t *testing.T) {
	service := NewService(testConfig())

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"invalid format", "not.a.jwt"},
		{"random string", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.VerifyAccess(tt.token); !errors.Is(err, ErrInvalid) {
				t.Errorf("VerifyAccess() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestService_WrongSecret(t *testing.T) {
	service1 := NewService(testConfig())

	otherCfg := testConfig()
	otherCfg.AccessSecret = "different-access-secret-32-chars"
	service2 := NewService(otherCfg)

	signed, _, err := service1.IssueAccess(testIdentity())
	if err != nil {
		t.Fatalf("IssueAccess() failed: %v", err)
	}

	if _, err := service2.VerifyAccess(signed); !errors.Is(err, ErrInvalid) {
		t.Errorf("VerifyAccess() with wrong secret error = %v, want ErrInvalid", err)
	}
}

func TestService_MissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AccessSecret = ""
	service := NewService(cfg)

	_, _, err := service.IssueAccess(testIdentity())
	if !errors.Is(err, ErrSigning) {
		t.Errorf("IssueAccess() error = %v, want ErrSigning", err)
	}
}
