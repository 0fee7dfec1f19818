package service_test

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/mini_shop/internal/repo"
	"github.com/Skotchmaster/mini_shop/internal/service"
	"github.com/Skotchmaster/mini_shop/internal/testutil"
)

var testSecret = []byte("test-secret")

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	m, _ := event.(map[string]any)
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Repo    *repo.GormRepo
	Events  *recordingPublisher
}

func newServices(t *testing.T) *services {
	t.Helper()

	r := repo.New(testutil.SQLiteDB(t))
	pub := &recordingPublisher{}
	return &services{
		Auth: &service.AuthService{
			Users:      r,
			Events:     pub,
			JWTSecret:  testSecret,
			BcryptCost: bcrypt.MinCost,
		},
		Catalog: service.NewCatalogService(r, pub),
		Cart:    &service.CartService{Carts: r, Products: r, Events: pub},
		Repo:    r,
		Events:  pub,
	}
}

// identity registers a user and returns the identity its token carries.
func (s *services) identity(t *testing.T, username, role string) *service.Identity {
	t.Helper()

	token, err := s.Auth.Register(context.Background(), username, "pw-"+username, role)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	id, err := s.Auth.Verify(token)
	if err != nil {
		t.Fatalf("verify %s: %v", username, err)
	}
	return id
}
