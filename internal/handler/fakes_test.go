package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/auth"
	"github.com/aayush4jha/kirayawale-beta-version/internal/cart"
	"github.com/aayush4jha/kirayawale-beta-version/internal/events"
	"github.com/aayush4jha/kirayawale-beta-version/internal/model"
	"github.com/aayush4jha/kirayawale-beta-version/internal/repository"
	"github.com/aayush4jha/kirayawale-beta-version/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memListings is an in-memory service.ListingStore.
type memListings struct {
	mu       sync.Mutex
	listings map[string]model.Listing
	nextID   int
	fail     error
}

func newMemListings(ls ...model.Listing) *memListings {
	m := &memListings{listings: map[string]model.Listing{}}
	for _, l := range ls {
		m.listings[l.ID] = l
	}
	return m
}

func (m *memListings) FetchAll(ctx context.Context) ([]model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]model.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		out = append(out, l)
	}
	return out, nil
}

func (m *memListings) FetchByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	all, err := m.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Listing
	for _, l := range all {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memListings) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	l, ok := m.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, repository.ErrNotFound)
	}
	return &l, nil
}

func (m *memListings) Create(ctx context.Context, l *model.Listing) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("new%d", m.nextID)
	stored := *l
	stored.ID = id
	stored.CreatedAt = time.Now()
	m.listings[id] = stored
	return id, nil
}

func (m *memListings) Update(ctx context.Context, id string, u model.ListingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.PricePerDay != nil {
		l.PricePerDay = *u.PricePerDay
	}
	if u.IsRented != nil {
		l.IsRented = *u.IsRented
	}
	m.listings[id] = l
	return nil
}

func (m *memListings) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.listings, id)
	return nil
}

func (m *memListings) AppendPhoto(ctx context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Photos = append(l.Photos, url)
	m.listings[id] = l
	return nil
}

type memOwners map[string]*model.User

func (o memOwners) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := o[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// tokens maps bearer tokens to user ids.
type tokens map[string]string

func (t tokens) Authenticate(token string) (*auth.Principal, error) {
	uid, ok := t[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Principal{UserID: uid, TokenID: "jti-" + uid}, nil
}

var testTokens = tokens{"alice-token": "alice", "bob-token": "bob"}

func sampleListings() []model.Listing {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Listing{
		{ID: "drill", OwnerID: "alice", Title: "Bosch Drill", Category: model.CategoryTools,
			Description: "Cordless", PricePerDay: 150, Location: "Pune",
			IsActive: true, CreatedAt: base, Photos: []string{}},
		{ID: "camera", OwnerID: "alice", Title: "Canon EOS", Category: model.CategoryCameras,
			Description: "DSLR kit", PricePerDay: 1000, Location: "Mumbai",
			IsActive: true, CreatedAt: base.Add(time.Hour), Photos: []string{}},
		{ID: "bike", OwnerID: "bob", Title: "Royal Enfield", Category: model.CategoryVehicles,
			Description: "Classic 350", PricePerDay: 1500, Location: "Pune",
			IsActive: true, IsRented: true, CreatedAt: base.Add(2 * time.Hour), Photos: []string{}},
	}
}

type testEnv struct {
	store  *memListings
	router *gin.Engine
}

func newTestEnv(t *testing.T, h Handlers, ls ...model.Listing) *testEnv {
	t.Helper()
	store := newMemListings(ls...)
	log := zap.NewNop()
	owners := memOwners{"alice": {ID: "alice", PhoneNumber: "+91 98765 43210"}}
	listings := service.NewListingService(store, owners, events.NewBus[events.ListingChanged](), time.Minute, log)

	if h.Listings == nil {
		h.Listings = &ListingHandler{Listings: listings, ContactPhone: "910000000000"}
	}
	if h.Cart == nil {
		storage := map[string]*cart.MemoryStorage{}
		var mu sync.Mutex
		carts := service.NewCartService(store, func(id string) cart.Storage {
			mu.Lock()
			defer mu.Unlock()
			if storage[id] == nil {
				storage[id] = cart.NewMemoryStorage()
			}
			return storage[id]
		}, cart.DefaultKey, log)
		h.Cart = &CartHandler{Carts: carts, ContactPhone: "910000000000"}
	}
	if h.Photos != nil && h.Photos.Listings == nil {
		h.Photos.Listings = listings
	}
	return &testEnv{store: store, router: NewRouter(log, testTokens, h)}
}

type request struct {
	method  string
	path    string
	token   string
	body    any
	cookies []*http.Cookie
}

func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}
