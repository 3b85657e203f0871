package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeGitHub serves the token endpoint and the two profile endpoints.
func fakeGitHub(t *testing.T, profile string, emails string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gh-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(profile))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		if emails == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emails))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGitHubProvider(srv *httptest.Server) *GitHubProvider {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/login/oauth/authorize",
		TokenURL:  srv.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.apiBase = srv.URL
	return p
}

func TestGitHubProvider_AuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/cb")

	u, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
}

func TestGitHubProvider_Exchange(t *testing.T) {
	srv := fakeGitHub(t, `{"id":42,"login":"octo","email":"octo@example.com","avatar_url":"a.png"}`, "")
	p := newTestGitHubProvider(srv)

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "octo", user.Login)
	assert.Equal(t, "octo@example.com", user.Email)
	assert.Equal(t, "a.png", user.AvatarURL)
}

func TestGitHubProvider_Exchange_PrimaryEmailFallback(t *testing.T) {
	srv := fakeGitHub(t,
		`{"id":42,"login":"octo","email":""}`,
		`[{"email":"old@example.com","primary":false,"verified":true},{"email":"main@example.com","primary":true,"verified":true}]`,
	)
	p := newTestGitHubProvider(srv)

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", user.Email)
}

func TestGitHubProvider_Exchange_HiddenEmail(t *testing.T) {
	srv := fakeGitHub(t, `{"id":42,"login":"octo"}`, "")
	p := newTestGitHubProvider(srv)

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Empty(t, user.Email)
}

func TestGitHubProvider_Exchange_InvalidUser(t *testing.T) {
	srv := fakeGitHub(t, `{"id":0,"login":""}`, "")
	p := newTestGitHubProvider(srv)

	_, err := p.Exchange(context.Background(), "code")
	assert.Error(t, err)
}
