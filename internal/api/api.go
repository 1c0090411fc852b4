// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api exposes a ring stack's query and direct-ingest operations
// over HTTP, mirroring the handler-per-concern REST layout the rest of this
// codebase uses.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/gorilla/mux"
)

// ErrorResponse is the JSON body returned for any non-2xx response.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func handleError(err error, statusCode int, rw http.ResponseWriter) {
	cclog.Warnf("api: %s", err.Error())
	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(ErrorResponse{
		Status: http.StatusText(statusCode),
		Error:  err.Error(),
	})
}

// QueryResult is the JSON body returned by a successful /query call.
type QueryResult struct {
	Value        any   `json:"value"`
	WidthSeconds int64 `json:"width_seconds"`
}

// QueryFunc answers a point-in-time query against a ring stack. It is the
// payload-type-erased shape of (*rrd.Stack[int64, P, C]).Query, adapted by
// the caller so this package need not be generic over P itself.
type QueryFunc func(t int64) (value any, widthSeconds int64, ok bool)

// IngestFunc decodes and applies one raw wire-format sample — the same
// 8-byte-timestamp-plus-payload format internal/ingest expects from NATS
// messages — directly over HTTP, useful for manual testing without a NATS
// deployment.
type IngestFunc func(data []byte) error

// HealthFunc reports whether the ingestion transport (if any) is currently
// connected. nil means ringstored was started without a NATS connection
// configured and /healthz reports only process liveness.
type HealthFunc func() bool

// API wires a ring stack's query and direct-ingest operations onto an HTTP
// mux.Router.
type API struct {
	Query  QueryFunc
	Ingest IngestFunc
	Health HealthFunc
}

// MountRoutes registers this API's handlers onto router.
func (a *API) MountRoutes(router *mux.Router) {
	router.HandleFunc("/query", a.handleQuery).Methods(http.MethodGet)
	router.HandleFunc("/ingest", a.handleIngest).Methods(http.MethodPost)
	router.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
}

// handleQuery godoc
// @summary     Query the covering bucket for a timestamp
// @description Returns the payload of the finest-resolution bucket whose
// @description retained horizon covers t, and that ring's bucket width.
// @produce     json
// @param       t         query    string        true  "unix timestamp (seconds)"
// @success     200       {object} QueryResult
// @failure     400       {object} ErrorResponse
// @failure     404       {object} ErrorResponse
// @router      /query [get]
func (a *API) handleQuery(rw http.ResponseWriter, r *http.Request) {
	rawT := r.URL.Query().Get("t")
	if rawT == "" {
		handleError(errors.New("'t' is a required query parameter"), http.StatusBadRequest, rw)
		return
	}

	t, err := strconv.ParseInt(rawT, 10, 64)
	if err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}

	value, width, ok := a.Query(t)
	rw.Header().Add("Content-Type", "application/json")
	if !ok {
		rw.WriteHeader(http.StatusNotFound)
		json.NewEncoder(rw).Encode(ErrorResponse{
			Status: http.StatusText(http.StatusNotFound),
			Error:  "no ring in the stack covers that timestamp",
		})
		return
	}

	json.NewEncoder(rw).Encode(QueryResult{Value: value, WidthSeconds: width})
}

// handleIngest godoc
// @summary     Insert one sample
// @description Accepts one wire-format sample in the request body and
// @description applies it to every ring in the stack.
// @accept      application/octet-stream
// @success     200
// @failure     400 {object} ErrorResponse
// @router      /ingest [post]
func (a *API) handleIngest(rw http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		handleError(err, http.StatusInternalServerError, rw)
		return
	}

	if err := a.Ingest(data); err != nil {
		handleError(err, http.StatusBadRequest, rw)
		return
	}
	rw.WriteHeader(http.StatusOK)
}

// HealthResult is the JSON body returned by /healthz.
type HealthResult struct {
	Status        string `json:"status"`
	NatsConnected *bool  `json:"nats_connected,omitempty"`
}

// handleHealthz godoc
// @summary     Liveness and ingestion transport status
// @description Always reports process liveness; includes nats_connected
// @description when ringstored was started with a NATS connection configured.
// @produce     json
// @success     200 {object} HealthResult
// @router      /healthz [get]
func (a *API) handleHealthz(rw http.ResponseWriter, _ *http.Request) {
	result := HealthResult{Status: "ok"}
	if a.Health != nil {
		connected := a.Health()
		result.NatsConnected = &connected
	}
	rw.Header().Add("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	json.NewEncoder(rw).Encode(result)
}
