package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveBytes(t *testing.T, n int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.CopyN(w, zeroReader{}, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

func TestGetBodyLimit(t *testing.T) {
	httpClient, err := NewHTTPClient(Options{})
	if err != nil {
		t.Fatal(err)
	}

	body, err := Get(context.Background(), httpClient, serveBytes(t, maxBodyBytes).URL, "")
	if err != nil {
		t.Fatalf("body at the limit: %v", err)
	}
	if len(body) != maxBodyBytes {
		t.Fatalf("read %d bytes, want %d", len(body), maxBodyBytes)
	}

	if _, err := Get(context.Background(), httpClient, serveBytes(t, maxBodyBytes+1).URL, ""); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("body over the limit: err = %v, want ErrBodyTooLarge", err)
	}
}

func TestGetDecodesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("United States"))
		gz.Close()
	}))
	defer srv.Close()

	httpClient, err := NewHTTPClient(Options{})
	if err != nil {
		t.Fatal(err)
	}
	body, err := Get(context.Background(), httpClient, srv.URL, "")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte("United States")) {
		t.Fatalf("body = %q", body)
	}
}

func TestGetRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	httpClient, err := NewHTTPClient(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Get(context.Background(), httpClient, srv.URL, ""); err == nil {
		t.Fatal("expected an error for a 429 response")
	}
}

func TestInsecureSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	strict, err := NewHTTPClient(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Get(context.Background(), strict, srv.URL, ""); err == nil {
		t.Fatal("self-signed certificate accepted without InsecureSkipVerify")
	}

	insecure, err := NewHTTPClient(Options{InsecureSkipVerify: true})
	if err != nil {
		t.Fatal(err)
	}
	body, err := Get(context.Background(), insecure, srv.URL, "")
	if err != nil {
		t.Fatalf("InsecureSkipVerify: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("body = %q", body)
	}
}

func TestNewHTTPClientRejectsBadProxy(t *testing.T) {
	if _, err := NewHTTPClient(Options{ProxyURL: "not a proxy"}); err == nil {
		t.Fatal("expected an error for an unparsable proxy URL")
	}
	if _, err := NewHTTPClient(Options{ProxyURL: "http://proxy.local:3128"}); err != nil {
		t.Fatalf("valid proxy: %v", err)
	}
}
