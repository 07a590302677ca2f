package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aayush4jha/kirayawale-beta-version/internal/cart"
	"github.com/aayush4jha/kirayawale-beta-version/internal/service"
)

func sessionCookie(t *testing.T, env *testEnv) *http.Cookie {
	t.Helper()
	w := env.do(t, request{method: http.MethodGet, path: "/api/cart"})
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == cartCookie {
			return c
		}
	}
	t.Fatal("no cart session cookie")
	return nil
}

func TestAnonymousCartFlow(t *testing.T) {
	env := newTestEnv(t, Handlers{}, sampleListings()...)
	cookie := sessionCookie(t, env)
	anon := func(method, path string, body any) CartResponse {
		t.Helper()
		w := env.do(t, request{method: method, path: path, body: body, cookies: []*http.Cookie{cookie}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[CartResponse](t, w)
	}

	got := anon(http.MethodPost, "/api/cart/items", map[string]any{"listing_id": "drill", "rental_days": 3})
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, 3, got.Items[0].RentalDays)
	assert.Equal(t, 450.0, got.TotalPrice)

	got = anon(http.MethodPost, "/api/cart/items", map[string]any{"listing_id": "drill", "rental_days": 2})
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 2, got.Items[0].RentalDays)
	assert.Equal(t, 2, got.TotalItems)

	got = anon(http.MethodPost, "/api/cart/items", map[string]any{"listing_id": "camera"})
	require.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Items[1].RentalDays)
	assert.Equal(t, 150.0*2*2+1000, got.TotalPrice)

	got = anon(http.MethodPatch, "/api/cart/items/camera/days", map[string]any{"rental_days": 0})
	assert.Equal(t, 1, got.Items[1].RentalDays)

	got = anon(http.MethodPatch, "/api/cart/items/camera/quantity", map[string]any{"quantity": 0})
	require.Len(t, got.Items, 1)
	assert.Equal(t, "drill", got.Items[0].ID)

	got = anon(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, 2, got.TotalItems)

	got = anon(http.MethodDelete, "/api/cart/items/drill", nil)
	assert.Empty(t, got.Items)
	assert.Zero(t, got.TotalPrice)
}

func TestCartsAreNotShared(t *testing.T) {
	env := newTestEnv(t, Handlers{}, sampleListings()...)
	first := sessionCookie(t, env)
	second := sessionCookie(t, env)
	require.NotEqual(t, first.Value, second.Value)

	w := env.do(t, request{method: http.MethodPost, path: "/api/cart/items",
		body: map[string]any{"listing_id": "drill"}, cookies: []*http.Cookie{first}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/cart", cookies: []*http.Cookie{second}})
	assert.Empty(t, decode[CartResponse](t, w).Items)

	w = env.do(t, request{method: http.MethodGet, path: "/api/cart", token: "alice-token"})
	assert.Empty(t, decode[CartResponse](t, w).Items)
}

func TestSignedInCartFollowsUser(t *testing.T) {
	env := newTestEnv(t, Handlers{}, sampleListings()...)

	w := env.do(t, request{method: http.MethodPost, path: "/api/cart/items", token: "bob-token",
		body: map[string]any{"listing_id": "camera", "rental_days": 2}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = env.do(t, request{method: http.MethodGet, path: "/api/cart", token: "bob-token"})
	assert.Len(t, decode[CartResponse](t, w).Items, 1)
}

func TestAddRejectsUnavailableListing(t *testing.T) {
	env := newTestEnv(t, Handlers{}, sampleListings()...)

	w := env.do(t, request{method: http.MethodPost, path: "/api/cart/items", token: "alice-token",
		body: map[string]any{"listing_id": "bike"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This item is no longer available for rent.", errorMessage(t, w))

	w = env.do(t, request{method: http.MethodPost, path: "/api/cart/items", token: "alice-token",
		body: map[string]any{"listing_id": "ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/cart/items", token: "alice-token",
		body: map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, Handlers{}, sampleListings()...)

	w := env.do(t, request{method: http.MethodGet, path: "/api/cart/checkout", token: "bob-token"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Your cart is empty.", errorMessage(t, w))

	w = env.do(t, request{method: http.MethodPost, path: "/api/cart/items", token: "bob-token",
		body: map[string]any{"listing_id": "camera", "rental_days": 3}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/cart/checkout", token: "bob-token"})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[map[string]any](t, w)
	link := out["url"].(string)
	require.True(t, strings.HasPrefix(link, "https://wa.me/910000000000?text="), link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "Canon EOS - 1x for 3 days (₹3,000)")
	assert.Contains(t, text, "Total: ₹3,000")
	assert.Equal(t, 3000.0, out["total_price"])
}

// downStorage fails reads while down is set.
type downStorage struct {
	*cart.MemoryStorage
	down bool
}

func (s *downStorage) Get(key string) (string, bool, error) {
	if s.down {
		return "", false, errors.New("connection refused")
	}
	return s.MemoryStorage.Get(key)
}

func TestCartStorageOutageDoesNotWipeCart(t *testing.T) {
	st := &downStorage{MemoryStorage: cart.NewMemoryStorage()}
	require.NoError(t, st.Set(cart.DefaultKey, `[{"id":"drill","title":"Bosch Drill","price_per_day":150,"quantity":2,"rentalDays":1}]`))
	before, _, _ := st.MemoryStorage.Get(cart.DefaultKey)

	carts := service.NewCartService(newMemListings(sampleListings()...),
		func(string) cart.Storage { return st }, cart.DefaultKey, zap.NewNop())
	env := newTestEnv(t, Handlers{Cart: &CartHandler{Carts: carts, ContactPhone: "910000000000"}}, sampleListings()...)

	st.down = true
	for _, r := range []request{
		{method: http.MethodGet, path: "/api/cart", token: "bob-token"},
		{method: http.MethodGet, path: "/api/cart/checkout", token: "bob-token"},
		{method: http.MethodPost, path: "/api/cart/items", token: "bob-token", body: map[string]any{"listing_id": "camera"}},
		{method: http.MethodDelete, path: "/api/cart", token: "bob-token"},
	} {
		w := env.do(t, r)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", r.method, r.path)
	}
	after, _, _ := st.MemoryStorage.Get(cart.DefaultKey)
	assert.Equal(t, before, after)

	st.down = false
	w := env.do(t, request{method: http.MethodGet, path: "/api/cart", token: "bob-token"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[CartResponse](t, w)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.TotalItems)
}
