package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/models"
)

func newLinkTestEnv(t *testing.T) (*LinkHandler, *fakeLinkStore, *fakeActivityStore, *fakeUserStore) {
	t.Helper()
	links := newFakeLinkStore()
	clicks := newFakeLinkClickStore()
	activities := newFakeActivityStore()
	users := newFakeUserStore()
	h := NewLinkHandler(links, clicks, activities, nil, "http://short.test", zap.NewNop())
	return h, links, activities, users
}

func createLink(t *testing.T, h *LinkHandler, user *models.User, originalURL string) *models.Link {
	t.Helper()
	body := fmt.Sprintf(`{"originalUrl":%q}`, originalURL)
	req := authedRequest("POST", "/url/new", &body, user)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("create link status = %d, body %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	link := &models.Link{}
	if err := json.Unmarshal(env.Data, link); err != nil {
		t.Fatalf("failed to decode created link: %v", err)
	}
	return link
}

func resolveCode(h *LinkHandler, shortURL string) *httptest.ResponseRecorder {
	// Resolve through the router so mux.Vars is populated
	r := mux.NewRouter()
	h.RegisterPublicRoutes(r.PathPrefix("/url").Subrouter())
	req := httptest.NewRequest("GET", shortURL, nil)
	req.Host = "short.test"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLink(t *testing.T) {
	t.Parallel()

	h, _, activities, users := newLinkTestEnv(t)
	user := testUser(t, users, "alice")

	link := createLink(t, h, user, "https://example.com/long/path")

	if link.OriginalURL != "https://example.com/long/path" {
		t.Errorf("OriginalURL = %q", link.OriginalURL)
	}
	if link.Clicks != 0 {
		t.Errorf("new link Clicks = %d, want 0", link.Clicks)
	}
	prefix := "http://short.test/url/goto/"
	if len(link.ShortURL) != len(prefix)+7 || link.ShortURL[:len(prefix)] != prefix {
		t.Errorf("ShortURL = %q, want %q + 7-char code", link.ShortURL, prefix)
	}

	got := activities.actionsFor(user.ID)
	if len(got) != 1 || got[0] != "Created a short url." {
		t.Errorf("activity log = %v", got)
	}
}

func TestCreateLinkDerivesBaseFromRequest(t *testing.T) {
	t.Parallel()

	// With no configured base URL the short url is minted from the
	// incoming request's scheme and host
	h := NewLinkHandler(newFakeLinkStore(), newFakeLinkClickStore(), newFakeActivityStore(), nil, "", zap.NewNop())
	users := newFakeUserStore()
	user := testUser(t, users, "alice")

	body := `{"originalUrl":"https://example.com"}`
	req := authedRequest("POST", "http://hub.example.org/url/new", &body, user)
	req.Host = "hub.example.org"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	var link models.Link
	unmarshalData(t, env, &link)

	prefix := "https://hub.example.org/url/goto/"
	if len(link.ShortURL) != len(prefix)+7 || link.ShortURL[:len(prefix)] != prefix {
		t.Errorf("ShortURL = %q, want %q + 7-char code", link.ShortURL, prefix)
	}
}

func TestCreateLinkMissingURL(t *testing.T) {
	t.Parallel()

	h, _, _, users := newLinkTestEnv(t)
	user := testUser(t, users, "alice")

	body := `{}`
	req := authedRequest("POST", "/url/new", &body, user)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Message != "No Url provided." {
		t.Errorf("message = %q", env.Message)
	}
}

func TestResolveIncrementsClicks(t *testing.T) {
	t.Parallel()

	h, links, _, users := newLinkTestEnv(t)
	user := testUser(t, users, "alice")
	link := createLink(t, h, user, "https://example.com")

	// Fresh link redirects and goes 0 -> 1
	w := resolveCode(h, link.ShortURL)
	if w.Code != http.StatusFound {
		t.Fatalf("redirect status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "https://example.com" {
		t.Errorf("Location = %q", got)
	}
	if got := links.links[link.ID].Clicks; got != 1 {
		t.Errorf("clicks after first resolve = %d, want 1", got)
	}

	// N further resolves move the counter to N+1
	for i := 0; i < 4; i++ {
		resolveCode(h, link.ShortURL)
	}
	if got := links.links[link.ID].Clicks; got != 5 {
		t.Errorf("clicks after 5 resolves = %d, want 5", got)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	t.Parallel()

	h, links, _, users := newLinkTestEnv(t)
	user := testUser(t, users, "alice")
	link := createLink(t, h, user, "https://example.com")

	w := resolveCode(h, "http://short.test/url/goto/zzzzzzz")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	// A failed resolve increments nothing
	if got := links.links[link.ID].Clicks; got != 0 {
		t.Errorf("clicks = %d, want 0", got)
	}
}

func TestDeleteLinkCrossUser(t *testing.T) {
	t.Parallel()

	h, links, _, users := newLinkTestEnv(t)
	alice := testUser(t, users, "alice")
	bob := testUser(t, users, "bob")
	link := createLink(t, h, alice, "https://example.com")

	// Bob cannot delete Alice's link; the response does not reveal
	// whether it exists
	body := fmt.Sprintf(`{"shortUrl":%q}`, link.ShortURL)
	req := authedRequest("POST", "/url/remove", &body, bob)
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Message != "No such url exists." {
		t.Errorf("message = %q", env.Message)
	}

	// The link is untouched and still resolvable
	if _, ok := links.links[link.ID]; !ok {
		t.Fatal("link was deleted by a non-owner")
	}
	if w := resolveCode(h, link.ShortURL); w.Code != http.StatusFound {
		t.Errorf("resolve after failed delete = %d, want 302", w.Code)
	}
}

func TestDeleteLink(t *testing.T) {
	t.Parallel()

	h, _, activities, users := newLinkTestEnv(t)
	user := testUser(t, users, "alice")
	link := createLink(t, h, user, "https://example.com")

	body := fmt.Sprintf(`{"shortUrl":%q}`, link.ShortURL)
	req := authedRequest("POST", "/url/remove", &body, user)
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// Deleted links no longer resolve
	if w := resolveCode(h, link.ShortURL); w.Code != http.StatusNotFound {
		t.Errorf("resolve after delete = %d, want 404", w.Code)
	}

	got := activities.actionsFor(user.ID)
	if len(got) != 2 || got[1] != "Removed a short url." {
		t.Errorf("activity log = %v", got)
	}
}

func TestListLinks(t *testing.T) {
	t.Parallel()

	h, _, _, users := newLinkTestEnv(t)
	alice := testUser(t, users, "alice")
	bob := testUser(t, users, "bob")
	createLink(t, h, alice, "https://one.example.com")
	createLink(t, h, alice, "https://two.example.com")
	createLink(t, h, bob, "https://three.example.com")

	req := authedRequest("GET", "/url/getAll", nil, alice)
	w := httptest.NewRecorder()
	h.GetAll(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	var data struct {
		URLs []*models.Link `json:"urls"`
	}
	unmarshalData(t, env, &data)
	if len(data.URLs) != 2 {
		t.Errorf("alice sees %d links, want 2", len(data.URLs))
	}
}

func TestLinkClicksEndpoint(t *testing.T) {
	t.Parallel()

	links := newFakeLinkStore()
	clicks := newFakeLinkClickStore()
	activities := newFakeActivityStore()
	users := newFakeUserStore()
	h := NewLinkHandler(links, clicks, activities, nil, "http://short.test", zap.NewNop())

	alice := testUser(t, users, "alice")
	bob := testUser(t, users, "bob")
	link := createLink(t, h, alice, "https://example.com")

	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/url").Subrouter())

	// Owner sees click history
	req := authedRequest("GET", "/url/"+link.ID.String()+"/clicks", nil, alice)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// Non-owner gets 404
	req = authedRequest("GET", "/url/"+link.ID.String()+"/clicks", nil, bob)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-user clicks status = %d, want 404", w.Code)
	}
}
