package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/banmai/schoolgate/internal/cache"
	"github.com/banmai/schoolgate/internal/config"
	"github.com/banmai/schoolgate/internal/token"
)

type fakeDirectory struct {
	verifiedEmail string
	asTeacher     bool
}

func (d *fakeDirectory) MarkVerifiedByEmail(_ context.Context, email string, asTeacher bool) error {
	d.verifiedEmail = email
	d.asTeacher = asTeacher
	return nil
}

func testTokens() *token.Service {
	return token.NewService(config.TokenConfig{
		AccessSecret:       "test-access-secret-minimum-32-ch",
		RefreshSecret:      "test-refresh-secret-minimum-32-c",
		AccessTTL:          time.Hour,
		RefreshTTL:         720 * time.Hour,
		RefreshedAccessTTL: 30 * time.Minute,
		VerifiedAccessTTL:  5 * time.Minute,
	})
}

func testIdentity() token.Identity {
	return token.Identity{ID: "u1", Role: "PARENT"}
}

func TestService_SignIn(t *testing.T) {
	store := cache.NewMemoryStore()
	tokens := testTokens()
	service := NewService(tokens, store, &fakeDirectory{})
	ctx := context.Background()

	pair, err := service.SignIn(ctx, testIdentity())
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}

	// Both entries are written under the kind-prefixed keys
	storedAccess, err := store.Get(ctx, "access:u1")
	if err != nil {
		t.Fatalf("access entry missing: %v", err)
	}
	if storedAccess != pair.AccessToken {
		t.Error("stored access token differs from the issued one")
	}

	storedRefresh, err := store.Get(ctx, "refresh:u1")
	if err != nil {
		t.Fatalf("refresh entry missing: %v", err)
	}
	if storedRefresh != pair.RefreshToken {
		t.Error("stored refresh token differs from the issued one")
	}

	// Both stored tokens decode to the signed-in identity
	accessClaims, err := tokens.VerifyAccess(storedAccess)
	if err != nil {
		t.Fatalf("stored access token does not verify: %v", err)
	}
	if accessClaims.Identity.ID != "u1" || accessClaims.Identity.Role != "PARENT" {
		t.Errorf("access identity = %+v, want id u1 role PARENT", accessClaims.Identity)
	}

	refreshClaims, err := tokens.VerifyRefresh(storedRefresh)
	if err != nil {
		t.Fatalf("stored refresh token does not verify: %v", err)
	}
	if refreshClaims.Identity.ID != "u1" || refreshClaims.Identity.Role != "PARENT" {
		t.Errorf("refresh identity = %+v, want id u1 role PARENT", refreshClaims.Identity)
	}
}

func TestService_SignInTTLs(t *testing.T) {
	store := cache.NewMemoryStore()
	base := time.Now()
	store.SetClock(func() time.Time { return base })

	service := NewService(testTokens(), store, &fakeDirectory{})
	ctx := context.Background()

	if _, err := service.SignIn(ctx, testIdentity()); err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}

	// Past the access lifetime the access entry is gone, the refresh entry
	// survives
	store.SetClock(func() time.Time { return base.Add(2 * time.Hour) })

	if _, err := store.Get(ctx, "access:u1"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("access entry after 2h: error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, "refresh:u1"); err != nil {
		t.Errorf("refresh entry after 2h should survive: %v", err)
	}

	// Past the refresh lifetime both are gone
	store.SetClock(func() time.Time { return base.Add(721 * time.Hour) })
	if _, err := store.Get(ctx, "refresh:u1"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("refresh entry after 721h: error = %v, want ErrNotFound", err)
	}
}

func TestService_SignInOverwrites(t *testing.T) {
	store := cache.NewMemoryStore()
	service := NewService(testTokens(), store, &fakeDirectory{})
	ctx := context.Background()

	first, err := service.SignIn(ctx, testIdentity())
	if err != nil {
		t.Fatalf("first SignIn() failed: %v", err)
	}

	second, err := service.SignIn(ctx, testIdentity())
	if err != nil {
		t.Fatalf("second SignIn() failed: %v", err)
	}

	stored, err := store.Get(ctx, "refresh:u1")
	if err != nil {
		t.Fatalf("refresh entry missing: %v", err)
	}

	if stored == first.RefreshToken && first.RefreshToken != second.RefreshToken {
		t.Error("second sign-in did not supersede the first session")
	}
	if stored != second.RefreshToken {
		t.Error("stored refresh token is not the latest sign-in's")
	}
}

func TestService_RefreshWithoutSession(t *testing.T) {
	service := NewService(testTokens(), cache.NewMemoryStore(), &fakeDirectory{})

	_, _, err := service.Refresh(context.Background(), "u1")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Refresh() error = %v, want ErrNoActiveSession", err)
	}
}

func TestService_Refresh(t *testing.T) {
	store := cache.NewMemoryStore()
	tokens := testTokens()
	service := NewService(tokens, store, &fakeDirectory{})
	ctx := context.Background()

	pair, err := service.SignIn(ctx, testIdentity())
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}

	accessToken, expiry, err := service.Refresh(ctx, "u1")
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	expected := time.Now().Add(30 * time.Minute)
	if diff := expiry.Sub(expected).Abs(); diff > time.Minute {
		t.Errorf("expiry = %v, expected around %v (diff: %v)", expiry, expected, diff)
	}

	claims, err := tokens.VerifyAccess(accessToken)
	if err != nil {
		t.Fatalf("refreshed access token does not verify: %v", err)
	}
	if claims.Identity.ID != "u1" {
		t.Errorf("refreshed identity id = %q, want %q", claims.Identity.ID, "u1")
	}

	// The access entry is overwritten; the refresh entry is untouched
	storedAccess, err := store.Get(ctx, "access:u1")
	if err != nil {
		t.Fatalf("access entry missing after refresh: %v", err)
	}
	if storedAccess != accessToken {
		t.Error("access entry was not overwritten with the refreshed token")
	}

	storedRefresh, err := store.Get(ctx, "refresh:u1")
	if err != nil {
		t.Fatalf("refresh entry missing after refresh: %v", err)
	}
	if storedRefresh != pair.RefreshToken {
		t.Error("refresh entry changed; refresh must not rotate it")
	}
}

func TestService_RefreshInvalidStored(t *testing.T) {
	store := cache.NewMemoryStore()
	service := NewService(testTokens(), store, &fakeDirectory{})
	ctx := context.Background()

	// A tampered entry in the store must not yield a new access token
	_ = store.Set(ctx, "refresh:u1", "not-a-valid-token", time.Hour)

	_, _, err := service.Refresh(ctx, "u1")
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Refresh() error = %v, want ErrInvalidSession", err)
	}
}

func TestService_SignOut(t *testing.T) {
	store := cache.NewMemoryStore()
	service := NewService(testTokens(), store, &fakeDirectory{})
	ctx := context.Background()

	if _, err := service.SignIn(ctx, testIdentity()); err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}

	if err := service.SignOut(ctx, "u1"); err != nil {
		t.Fatalf("SignOut() failed: %v", err)
	}

	if _, err := store.Get(ctx, "access:u1"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("access entry after sign-out: error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, "refresh:u1"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("refresh entry after sign-out: error = %v, want ErrNotFound", err)
	}

	// A second sign-out has nothing left to revoke
	if err := service.SignOut(ctx, "u1"); !errors.Is(err, ErrNothingToRevoke) {
		t.Errorf("second SignOut() error = %v, want ErrNothingToRevoke", err)
	}
}

func TestService_SignOutWithoutSignIn(t *testing.T) {
	service := NewService(testTokens(), cache.NewMemoryStore(), &fakeDirectory{})

	err := service.SignOut(context.Background(), "u1")
	if !errors.Is(err, ErrNothingToRevoke) {
		t.Errorf("SignOut() error = %v, want ErrNothingToRevoke", err)
	}
}

func TestService_VerifyAccountToken(t *testing.T) {
	tokens := testTokens()
	directory := &fakeDirectory{}
	service := NewService(tokens, cache.NewMemoryStore(), directory)
	ctx := context.Background()

	identity := token.Identity{ID: "t1", Role: "TEACHER", Email: "teacher@example.com"}
	signed, _, err := tokens.IssueAccess(identity)
	if err != nil {
		t.Fatalf("IssueAccess() failed: %v", err)
	}

	got, err := service.VerifyAccountToken(ctx, signed, true)
	if err != nil {
		t.Fatalf("VerifyAccountToken() failed: %v", err)
	}

	if got.Email != "teacher@example.com" {
		t.Errorf("identity email = %q, want %q", got.Email, "teacher@example.com")
	}
	if directory.verifiedEmail != "teacher@example.com" {
		t.Errorf("directory verified %q, want %q", directory.verifiedEmail, "teacher@example.com")
	}
	if !directory.asTeacher {
		t.Error("directory asTeacher = false, want true")
	}
}

func TestService_VerifyAccountTokenRejectsRefreshKind(t *testing.T) {
	tokens := testTokens()
	service := NewService(tokens, cache.NewMemoryStore(), &fakeDirectory{})

	signed, _, err := tokens.IssueRefresh(testIdentity())
	if err != nil {
		t.Fatalf("IssueRefresh() failed: %v", err)
	}

	_, err = service.VerifyAccountToken(context.Background(), signed, false)
	if !errors.Is(err, token.ErrInvalid) {
		t.Errorf("VerifyAccountToken() error = %v, want token.ErrInvalid", err)
	}
}
