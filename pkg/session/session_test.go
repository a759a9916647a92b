package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/booknest/booknest-server/internal/domain"
	"github.com/booknest/booknest-server/pkg/auth"
)

const testSecret = "test-secret"

type fakeFetcher struct {
	user  *domain.UserInfo
	err   error
	calls int
}

func (f *fakeFetcher) CurrentUser(_ context.Context, token string) (*domain.UserInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func testUser() *domain.UserInfo {
	return &domain.UserInfo{
		ID:    "u-1",
		Email: "reader@booknest.local",
		Role:  domain.RoleCustomer,
	}
}

func TestInitWithoutToken(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := New(NewMemoryStore(), fetcher)

	if s.State() != Loading {
		t.Fatalf("initial state = %v, want Loading", s.State())
	}

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if s.State() != Unauthenticated {
		t.Errorf("state = %v, want Unauthenticated", s.State())
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times, want 0", fetcher.calls)
	}
}

func TestInitWithExpiredTokenSkipsNetwork(t *testing.T) {
	token, err := auth.NewAccessToken("u-1", "reader@booknest.local", "customer", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	store := NewMemoryStore()
	if err := store.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fetcher := &fakeFetcher{user: testUser()}
	s := New(store, fetcher)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if s.State() != Unauthenticated {
		t.Errorf("state = %v, want Unauthenticated", s.State())
	}
	if fetcher.calls != 0 {
		t.Errorf("expired token triggered %d network calls, want 0", fetcher.calls)
	}
	if stored, _ := store.Load(); stored != "" {
		t.Error("expired token was not cleared from the store")
	}
}

func TestInitWithValidToken(t *testing.T) {
	token, err := auth.NewAccessToken("u-1", "reader@booknest.local", "customer", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	store := NewMemoryStore()
	if err := store.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fetcher := &fakeFetcher{user: testUser()}
	s := New(store, fetcher)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if s.State() != Authenticated {
		t.Fatalf("state = %v, want Authenticated", s.State())
	}
	if s.User() == nil || s.User().ID != "u-1" {
		t.Error("session did not adopt the fetched user")
	}
	if s.Token() != token {
		t.Error("session did not keep the stored token")
	}
}

func TestInitWithRejectedToken(t *testing.T) {
	token, err := auth.NewAccessToken("u-1", "reader@booknest.local", "customer", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	store := NewMemoryStore()
	if err := store.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fetcher := &fakeFetcher{err: errors.New("401")}
	s := New(store, fetcher)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if s.State() != Unauthenticated {
		t.Errorf("state = %v, want Unauthenticated", s.State())
	}
	if stored, _ := store.Load(); stored != "" {
		t.Error("rejected token was not cleared from the store")
	}
}

func TestLoginAndLogout(t *testing.T) {
	store := NewMemoryStore()
	s := New(store, &fakeFetcher{})

	if err := s.Login("tok-123", testUser()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.State() != Authenticated {
		t.Fatalf("state after login = %v, want Authenticated", s.State())
	}
	if stored, _ := store.Load(); stored != "tok-123" {
		t.Error("login did not persist the token")
	}
	if s.Guard() != GateAllow {
		t.Errorf("guard = %v, want GateAllow", s.Guard())
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("state after logout = %v, want Unauthenticated", s.State())
	}
	if stored, _ := store.Load(); stored != "" {
		t.Error("logout did not clear the token")
	}
	if s.Guard() != GateRedirect {
		t.Errorf("guard = %v, want GateRedirect", s.Guard())
	}
}

func TestGuardWhileLoading(t *testing.T) {
	s := New(NewMemoryStore(), &fakeFetcher{})
	if s.Guard() != GateWait {
		t.Errorf("guard = %v, want GateWait", s.Guard())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/token"
	store := NewFileStore(path)

	if tok, err := store.Load(); err != nil || tok != "" {
		t.Fatalf("Load on empty store = (%q, %v), want (\"\", nil)", tok, err)
	}

	if err := store.Save("tok-456"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tok, _ := store.Load(); tok != "tok-456" {
		t.Errorf("Load = %q, want tok-456", tok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tok, _ := store.Load(); tok != "" {
		t.Errorf("Load after clear = %q, want empty", tok)
	}
}
