/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package server

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Juice-Labs/borrow/pkg/errors"
)

func TestNewServerPort(t *testing.T) {
	server, err := NewServer("localhost:8080", nil)
	if err != nil || server.Port() != 8080 {
		t.Errorf("unexpected server %v, %v", server, err)
	}

	server, err = NewServer("localhost", nil)
	if err != nil || server.Port() != 80 {
		t.Errorf("expected default port 80, got %v, %v", server, err)
	}

	server, err = NewServer("[::1]", &tls.Config{})
	if err != nil || server.Port() != 443 {
		t.Errorf("expected default port 443, got %v, %v", server, err)
	}

	server, err = NewServer("[::1]:9000", nil)
	if err != nil || server.Port() != 9000 {
		t.Errorf("unexpected server %v, %v", server, err)
	}

	for _, address := range []string{"localhost:http", "localhost:", "localhost:70000", "a:b:c"} {
		_, err = NewServer(address, nil)
		if !errors.Is(err, ErrInvalidPort) {
			t.Errorf("%s: expected ErrInvalidPort, got %v", address, err)
		}
	}
}

func TestHandlerRoutesEndpoints(t *testing.T) {
	server, err := NewServer("localhost:8080", nil)
	if err != nil {
		t.Fatal(err)
	}

	server.AddEndpointFunc("POST", "/echo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	handler := server.Handler()

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/echo", http.StatusAccepted},
		{http.MethodGet, "/echo", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, c := range cases {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(c.method, c.path, nil))

		if recorder.Code != c.status {
			t.Errorf("%s %s: expected %d, got %d", c.method, c.path, c.status, recorder.Code)
		}
	}
}
