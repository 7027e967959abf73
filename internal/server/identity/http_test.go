package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateAccount_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k3y" {
			t.Errorf("missing api key header, got %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"prov-1"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "k3y", time.Second)

	id, err := p.CreateAccount(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "prov-1" {
		t.Fatalf("want prov-1, got %q", id)
	}
}

func TestCreateAccount_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", time.Second)

	if _, err := p.CreateAccount(context.Background(), "a@b.com", "pw"); err == nil {
		t.Fatalf("expected error for 400 response")
	}
}

func TestCreateAccount_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", time.Second)

	if _, err := p.CreateAccount(context.Background(), "a@b.com", "pw"); err == nil {
		t.Fatalf("expected error for response without id")
	}
}

func TestCreateAccount_Unreachable(t *testing.T) {
	p := NewHTTPProvider("http://127.0.0.1:1", "", 100*time.Millisecond)

	if _, err := p.CreateAccount(context.Background(), "a@b.com", "pw"); err == nil {
		t.Fatalf("expected error for unreachable provider")
	}
}

func TestDeleteAccount(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", time.Second)

	if err := p.DeleteAccount(context.Background(), "prov-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/admin/users/prov-1" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestAccountExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("email") == "known@x.com" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", time.Second)

	exists, err := p.AccountExists(context.Background(), "known@x.com")
	if err != nil || !exists {
		t.Fatalf("want exists=true, got %v, %v", exists, err)
	}

	exists, err = p.AccountExists(context.Background(), "unknown@x.com")
	if err != nil || exists {
		t.Fatalf("want exists=false, got %v, %v", exists, err)
	}
}
