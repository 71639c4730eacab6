/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package net

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type payload struct {
	TimeoutMs int64 `json:"timeoutMs"`
}

func TestRespondRoundTrip(t *testing.T) {
	recorder := httptest.NewRecorder()
	if err := Respond(recorder, http.StatusOK, payload{TimeoutMs: 500}); err != nil {
		t.Fatal(err)
	}

	value, err := ReadResponseBody[payload](recorder.Result())
	if err != nil || value.TimeoutMs != 500 {
		t.Errorf("unexpected value %+v, %v", value, err)
	}
}

func TestReadRequestBodyRequiresJson(t *testing.T) {
	request := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"timeoutMs": 1}`))
	if _, err := ReadRequestBody[payload](request); err == nil {
		t.Errorf("expected missing content type to fail")
	}

	request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"timeoutMs": 1}`))
	request.Header.Set("Content-Type", "application/json; charset=utf-8")
	value, err := ReadRequestBody[payload](request)
	if err != nil || value.TimeoutMs != 1 {
		t.Errorf("unexpected value %+v, %v", value, err)
	}
}

func TestReadResponseBodyReportsStatus(t *testing.T) {
	recorder := httptest.NewRecorder()
	RespondWithString(recorder, http.StatusConflict, "busy")

	_, err := ReadResponseBody[payload](recorder.Result())
	if err == nil || !strings.Contains(err.Error(), "code 409") || !strings.Contains(err.Error(), "busy") {
		t.Errorf("unexpected error %v", err)
	}
}
