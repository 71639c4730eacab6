/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Juice-Labs/borrow/pkg/database"
	"github.com/Juice-Labs/borrow/pkg/middleware"
	"github.com/Juice-Labs/borrow/pkg/restapi"
)

func newTestService(t *testing.T, config Config) (*Service, restapi.Client) {
	t.Helper()
	t.Setenv("DISABLE_VALIDATION", "true")

	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}
	if config.Database.Driver == "" {
		config.Database = database.Config{
			Driver:       database.DriverSqlite,
			Dsn:          "file::memory:",
			MaxOpenConns: 1,
		}
	}

	service, err := NewService(config)
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(service.Server.Handler())
	t.Cleanup(server.Close)
	t.Cleanup(func() { service.Slot.Close() })

	return service, restapi.Client{
		Client:  server.Client(),
		Scheme:  "http",
		Address: strings.TrimPrefix(server.URL, "http://"),
	}
}

func TestQueryBorrowsAndReleases(t *testing.T) {
	_, client := newTestService(t, Config{})
	ctx := context.Background()

	response, err := client.Query(ctx, restapi.QueryRequest{Sql: "SELECT 1 + 1"})
	if err != nil {
		t.Fatal(err)
	}
	if response.Value != float64(2) || response.Era != 1 || response.DatabaseId == "" {
		t.Errorf("unexpected query response %+v", response)
	}

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Name != SlotName || status.Live || status.Active != 0 || status.Era != 1 {
		t.Errorf("unexpected status after query %+v", status)
	}

	second, err := client.Query(ctx, restapi.QueryRequest{Sql: "SELECT ?", Args: []any{"borrowed"}})
	if err != nil {
		t.Fatal(err)
	}
	if second.Value != "borrowed" || second.Era != 2 || second.DatabaseId == response.DatabaseId {
		t.Errorf("expected a new database for the second query, got %+v", second)
	}

	eras, err := client.Eras(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(eras) != 2 {
		t.Fatalf("expected 2 eras, got %d", len(eras))
	}
	for _, era := range eras {
		if era.State != restapi.EraEnded || era.Reason != "released" || era.Acquisitions != 1 {
			t.Errorf("unexpected era %+v", era)
		}
	}
}

func TestQueryFailureReleasesDatabase(t *testing.T) {
	service, client := newTestService(t, Config{})

	_, err := client.Query(context.Background(), restapi.QueryRequest{Sql: "SELECT * FROM missing"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected a bad request, got %v", err)
	}

	if service.Slot.Live() || service.Slot.Active() != 0 {
		t.Errorf("database still borrowed after a failed query %+v", service.Slot.Stats())
	}
}

func TestQueryWithUnavailableDatabase(t *testing.T) {
	_, client := newTestService(t, Config{
		Database: database.Config{Driver: "oracle"},
	})

	_, err := client.Query(context.Background(), restapi.QueryRequest{Sql: "SELECT 1"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("expected service unavailable, got %v", err)
	}
}

func TestQueryJoinsLiveEra(t *testing.T) {
	service, client := newTestService(t, Config{})

	handle, err := service.Slot.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer handle.Release()

	response, err := client.Query(context.Background(), restapi.QueryRequest{Sql: "SELECT 1"})
	if err != nil {
		t.Fatal(err)
	}
	if response.DatabaseId != handle.Value().Id() || response.Era != handle.Era() {
		t.Errorf("query did not share the live database")
	}
	if !service.Slot.Live() || service.Slot.Active() != 1 {
		t.Errorf("query release closed a database that is still held")
	}
}

func TestSetTimeoutAndReset(t *testing.T) {
	service, client := newTestService(t, Config{})
	ctx := context.Background()

	status, err := client.SetTimeout(ctx, 250)
	if err != nil {
		t.Fatal(err)
	}
	if status.TimeoutMs != 250 || service.Slot.Timeout().Milliseconds() != 250 {
		t.Errorf("timeout not applied %+v", status)
	}

	_, err = client.SetTimeout(ctx, -1)
	if err == nil {
		t.Errorf("expected a negative timeout to be rejected")
	}

	handle, err := service.Slot.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	database := handle.Value()

	if err = client.Reset(ctx); err != nil {
		t.Fatal(err)
	}

	status, err = client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Live || status.Active != 0 {
		t.Errorf("slot still live after reset %+v", status)
	}

	if err = handle.Release(); err != nil {
		t.Errorf("release after reset returned %v", err)
	}

	eras, err := client.Eras(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(eras) != 1 || eras[0].Reason != "reset" {
		t.Errorf("unexpected eras after reset %+v", eras)
	}

	// Reset abandons the instance.
	database.Close()
}

func TestAdminEndpointsAreGuarded(t *testing.T) {
	var reject middleware.Middleware = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	service, client := newTestService(t, Config{Guard: reject})
	ctx := context.Background()

	if _, err := client.SetTimeout(ctx, 10); err == nil {
		t.Errorf("expected the timeout update to be rejected")
	}
	if err := client.Reset(ctx); err == nil {
		t.Errorf("expected the reset to be rejected")
	}
	if service.Slot.Timeout() != 0 {
		t.Errorf("rejected request changed the timeout")
	}

	if _, err := client.Status(ctx); err != nil {
		t.Errorf("status should not be guarded, %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, client := newTestService(t, Config{})
	ctx := context.Background()

	if _, err := client.Query(ctx, restapi.QueryRequest{Sql: "SELECT 1"}); err != nil {
		t.Fatal(err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+client.Address+"/v1/prometheus/metrics", nil)
	if err != nil {
		t.Fatal(err)
	}

	response, err := client.Client.Do(request)
	if err != nil {
		t.Fatal(err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatal(err)
	}

	for _, expected := range []string{
		`borrow_slot_created_total{slot="database"} 1`,
		`borrow_slot_ended_total{reason="released",slot="database"} 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(string(body), expected) {
			t.Errorf("metrics missing %s", expected)
		}
	}
}

func TestQueryRateLimit(t *testing.T) {
	_, client := newTestService(t, Config{QueryRate: 0.001, QueryBurst: 1})
	ctx := context.Background()

	if _, err := client.Query(ctx, restapi.QueryRequest{Sql: "SELECT 1"}); err != nil {
		t.Fatal(err)
	}

	_, err := client.Query(ctx, restapi.QueryRequest{Sql: "SELECT 1"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected the second query to be limited, got %v", err)
	}
}
