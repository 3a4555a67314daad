package twitchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenSourceMissingCredentials(t *testing.T) {
	ts := &TokenSource{}
	if _, err := ts.Get(context.Background()); err == nil {
		t.Error("Get() error = nil, want missing credentials error")
	}
}

func TestTokenSourceSendsCredentialsInForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("client_secret"); got != "s3cret" {
			t.Errorf("client_secret = %q, want s3cret", got)
		}
		if got := r.FormValue("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	ts := &TokenSource{ClientID: "cid", ClientSecret: "s3cret", TokenURL: srv.URL}
	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if tok != "tok-1" {
		t.Errorf("token = %q, want tok-1", tok)
	}
}

func TestTokenSourceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":403,"message":"invalid client secret"}`))
	}))
	defer srv.Close()

	ts := &TokenSource{ClientID: "cid", ClientSecret: "wrong", TokenURL: srv.URL}
	if _, err := ts.Get(context.Background()); err == nil {
		t.Error("Get() error = nil, want upstream failure")
	}
}
