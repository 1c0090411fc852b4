// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func setup() (*API, *mux.Router) {
	a := &API{
		Query: func(t int64) (any, int64, bool) {
			if t < 0 {
				return nil, 0, false
			}
			return 5.0, int64(30), true
		},
		Ingest: func(data []byte) error {
			if len(data) != 16 {
				return errors.New("wrong body length")
			}
			return nil
		},
	}
	router := mux.NewRouter()
	a.MountRoutes(router)
	return a, router
}

func TestHandleQueryHit(t *testing.T) {
	_, router := setup()

	req := httptest.NewRequest(http.MethodGet, "/query?t=100", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusOK)
	}
	var result QueryResult
	if err := json.Unmarshal(rw.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.WidthSeconds != 30 {
		t.Errorf("WidthSeconds = %d, want 30", result.WidthSeconds)
	}
}

func TestHandleQueryMiss(t *testing.T) {
	_, router := setup()

	req := httptest.NewRequest(http.MethodGet, "/query?t=-1", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusNotFound)
	}
}

func TestHandleQueryMissingParam(t *testing.T) {
	_, router := setup()

	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusBadRequest)
	}
}

func TestHandleQueryMalformedParam(t *testing.T) {
	_, router := setup()

	req := httptest.NewRequest(http.MethodGet, "/query?t=notanumber", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusBadRequest)
	}
}

func TestHandleIngestAcceptsWellFormedBody(t *testing.T) {
	_, router := setup()

	body := make([]byte, 16)
	binary.BigEndian.PutUint64(body[:8], 100)
	binary.BigEndian.PutUint64(body[8:], math.Float64bits(3.0))

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusOK)
	}
}

func TestHandleIngestRejectsWrongLength(t *testing.T) {
	_, router := setup()

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader([]byte{1, 2, 3}))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusBadRequest)
	}
}

func TestHandleHealthzWithoutHealthFunc(t *testing.T) {
	_, router := setup()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rw.Code, http.StatusOK)
	}
	var result HealthResult
	if err := json.Unmarshal(rw.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("Status = %q, want ok", result.Status)
	}
	if result.NatsConnected != nil {
		t.Errorf("NatsConnected = %v, want nil (no Health func configured)", *result.NatsConnected)
	}
}

func TestHandleHealthzReportsNatsConnection(t *testing.T) {
	a, router := setup()
	a.Health = func() bool { return true }

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	var result HealthResult
	if err := json.Unmarshal(rw.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.NatsConnected == nil || !*result.NatsConnected {
		t.Errorf("NatsConnected = %v, want true", result.NatsConnected)
	}
}
