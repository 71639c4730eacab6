/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package logger

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceRestores(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))

	Errorf("slot %d failed", 3)
	Debugw("acquired", "active", 2)

	restore()
	Error("discarded")

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}

	entries := logs.All()
	if entries[0].Message != "slot 3 failed" || entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].ContextMap()["active"] != int64(2) {
		t.Errorf("unexpected fields %+v", entries[1].ContextMap())
	}
}

func TestJuiceEncoderLine(t *testing.T) {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02")

	encoder, err := NewJuiceEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	entry := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Time:    time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC),
		Message: "idle timeout",
	}

	buffer, err := encoder.EncodeEntry(entry, []zapcore.Field{zap.Uint64("era", 9)})
	if err != nil {
		t.Fatal(err)
	}
	defer buffer.Free()

	expected := fmt.Sprintf("2023-04-05 %d W] idle timeout {\"era\":9}\n", encoder.(*juiceEncoder).pid)
	if buffer.String() != expected {
		t.Errorf("expected %q, got %q", expected, buffer.String())
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer Replace(zap.New(core))()

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/slot", nil))

	if logs.Len() != 1 || !strings.Contains(logs.All()[0].Message, "GET /v1/slot 418") {
		t.Errorf("unexpected log entries %+v", logs.All())
	}
}
