package merolagani

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/nepsewatch/internal/common"
)

const samplePage = `<html><body><table class="table-hover"><tr><td>NABIL</td></tr></table></body></html>`

func TestFetchPage_ReturnsBodyAndSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	client := NewClient(WithURL(srv.URL + "/LatestMarket.aspx"))
	body, err := client.FetchPage(context.Background())
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if body != samplePage {
		t.Errorf("expected body to be returned verbatim, got %q", body)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("expected GET, got %s", gotMethod)
	}
	if gotPath != "/LatestMarket.aspx" {
		t.Errorf("expected path /LatestMarket.aspx, got %s", gotPath)
	}
	if gotUA != common.DefaultUserAgent {
		t.Errorf("expected browser User-Agent, got %q", gotUA)
	}
	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent should identify as a browser, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("expected Accept to include text/html, got %q", gotAccept)
	}
}

func TestFetchPage_CustomUserAgentAndHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
	}))
	defer srv.Close()

	client := NewClient(
		WithURL(srv.URL),
		WithUserAgent("Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"),
		WithHeaders(map[string]string{"Accept-Language": "en-US"}),
	)
	if _, err := client.FetchPage(context.Background()); err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if gotUA != "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0" {
		t.Errorf("expected custom User-Agent, got %q", gotUA)
	}
	if gotLang != "en-US" {
		t.Errorf("expected Accept-Language en-US, got %q", gotLang)
	}
}

func TestFetchPage_Non2xxIsFetchError(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("nope"))
		}))

		client := NewClient(WithURL(srv.URL))
		_, err := client.FetchPage(context.Background())
		srv.Close()

		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("status %d: expected *FetchError, got %T (%v)", status, err, err)
		}
		if fe.StatusCode != status {
			t.Errorf("expected StatusCode %d, got %d", status, fe.StatusCode)
		}
		if fe.URL != srv.URL {
			t.Errorf("expected URL %s on error, got %s", srv.URL, fe.URL)
		}
	}
}

func TestFetchPage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(WithURL(srv.URL), WithTimeout(100*time.Millisecond))
	_, err := client.FetchPage(context.Background())

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError on timeout, got %v", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("expected no status code on timeout, got %d", fe.StatusCode)
	}
}

func TestFetchPage_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	client := NewClient(WithURL(srv.URL))
	_, err := client.FetchPage(ctx)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected error to wrap context.Canceled, got %v", err)
	}
}

func TestFetchPage_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(WithURL(url), WithTimeout(time.Second))
	_, err := client.FetchPage(context.Background())

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError for unreachable host, got %v", err)
	}
}

func TestFetchPage_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	client := NewClient(WithURL(srv.URL), WithMaxBodyBytes(1024))
	_, err := client.FetchPage(context.Background())
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := common.NewDefaultConfig().Market
	cfg.URL = "http://example.invalid/market"
	cfg.Timeout = "3s"

	client := NewClientFromConfig(cfg, common.NewSilentLogger())
	if client.URL() != "http://example.invalid/market" {
		t.Errorf("expected configured URL, got %s", client.URL())
	}
	if client.httpClient.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", client.httpClient.Timeout)
	}
	if client.headers.Get("User-Agent") != common.DefaultUserAgent {
		t.Errorf("expected default User-Agent, got %q", client.headers.Get("User-Agent"))
	}
}
