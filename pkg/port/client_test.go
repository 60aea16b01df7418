package port_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

type fakePort struct {
	tokenRequests atomic.Int32
	tokenStatus   int
	token         string
	upsertStatus  int
	mu            sync.Mutex
	upserts       []*upsertRequest
}

type upsertRequest struct {
	Path          string
	Query         map[string]string
	Authorization string
	Body          map[string]any
}

func (f *fakePort) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests.Add(1)
		body := map[string]string{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode a token request: %v", err)
		}
		if body["clientId"] != "id" || body["clientSecret"] != "secret" {
			t.Errorf("unexpected credentials: %v", body)
		}
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"ok":false}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          true,
			"accessToken": f.token,
			"expiresIn":   10800,
			"tokenType":   "Bearer",
		})
	})
	mux.HandleFunc("POST /v1/blueprints/{blueprint}/entities", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode an upsert request: %v", err)
		}
		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.upserts = append(f.upserts, &upsertRequest{
			Path:          r.URL.Path,
			Query:         query,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		if f.upsertStatus != 0 {
			w.WriteHeader(f.upsertStatus)
			_, _ = w.Write([]byte(`{"ok":false,"error":"rate_limit"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

func newClient(t *testing.T, srv *httptest.Server) *port.Client {
	t.Helper()
	return port.New(context.Background(), &port.ClientConfig{
		BaseURL:      srv.URL + "/v1/",
		ClientID:     "id",
		ClientSecret: "secret",
		HTTPClient:   srv.Client(),
	})
}

func TestClient_UpsertEntity(t *testing.T) {
	t.Parallel()
	fake := &fakePort{token: "xxx"}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	client := newClient(t, srv)
	if err := client.Authenticate(); err != nil {
		t.Fatal(err)
	}
	entities := []*port.Entity{
		port.NewServiceEntity("myrepo", port.BlueprintKICSScan, []string{"Q1"}),
		{
			Identifier: "Q1",
			Title:      "T1",
			Blueprint:  port.BlueprintKICSScan,
			Properties: map[string]any{"url": "myrepo"},
		},
	}
	for _, e := range entities {
		if err := client.UpsertEntity(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
	if n := fake.tokenRequests.Load(); n != 1 {
		t.Errorf("the token must be requested once, got %d", n)
	}
	query := map[string]string{
		"upsert":                          "true",
		"merge":                           "true",
		"create_missing_related_entities": "true",
	}
	exp := []*upsertRequest{
		{
			Path:          "/v1/blueprints/service/entities",
			Query:         query,
			Authorization: "Bearer xxx",
			Body: map[string]any{
				"identifier": "myrepo",
				"blueprint":  "service",
				"relations":  map[string]any{"kicsScan": []any{"Q1"}},
			},
		},
		{
			Path:          "/v1/blueprints/kicsScan/entities",
			Query:         query,
			Authorization: "Bearer xxx",
			Body: map[string]any{
				"identifier": "Q1",
				"title":      "T1",
				"blueprint":  "kicsScan",
				"properties": map[string]any{"url": "myrepo"},
			},
		},
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if diff := cmp.Diff(exp, fake.upserts); diff != "" {
		t.Fatal(diff)
	}
}

func TestClient_UpsertEntity_apiError(t *testing.T) {
	t.Parallel()
	fake := &fakePort{token: "xxx", upsertStatus: http.StatusTooManyRequests}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	client := newClient(t, srv)
	err := client.UpsertEntity(context.Background(), &port.Entity{Identifier: "Q1", Blueprint: port.BlueprintKICSScan})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *port.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *port.APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode: wanted %d, got %d", http.StatusTooManyRequests, apiErr.StatusCode)
	}
}

func TestClient_Authenticate(t *testing.T) {
	t.Parallel()
	data := []struct {
		name        string
		fake        *fakePort
		wantErr     bool
		wantErrIs   error
		wantAPIcode int
	}{
		{
			name: "normal",
			fake: &fakePort{token: "xxx"},
		},
		{
			name:        "unauthorized",
			fake:        &fakePort{tokenStatus: http.StatusUnauthorized},
			wantErr:     true,
			wantAPIcode: http.StatusUnauthorized,
		},
		{
			name:      "empty token",
			fake:      &fakePort{},
			wantErr:   true,
			wantErrIs: port.ErrEmptyAccessToken,
		},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(d.fake.handler(t))
			defer srv.Close()
			err := newClient(t, srv).Authenticate()
			if !d.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if d.wantErrIs != nil && !errors.Is(err, d.wantErrIs) {
				t.Errorf("wanted %v, got %v", d.wantErrIs, err)
			}
			if d.wantAPIcode != 0 {
				var apiErr *port.APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected *port.APIError, got %v", err)
				}
				if apiErr.StatusCode != d.wantAPIcode {
					t.Errorf("StatusCode: wanted %d, got %d", d.wantAPIcode, apiErr.StatusCode)
				}
			}
		})
	}
}
