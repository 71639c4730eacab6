/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Juice-Labs/borrow/pkg/database"
	"github.com/Juice-Labs/borrow/pkg/ledger"
	"github.com/Juice-Labs/borrow/pkg/logger"
	"github.com/Juice-Labs/borrow/pkg/middleware"
	pkgnet "github.com/Juice-Labs/borrow/pkg/net"
	"github.com/Juice-Labs/borrow/pkg/restapi"
	"github.com/Juice-Labs/borrow/pkg/slot"
)

func (service *Service) initializeEndpoints() {
	admin := func(fn http.HandlerFunc) http.Handler {
		return service.guard(middleware.RequireScope(AdminScope)(fn))
	}

	service.Server.AddEndpointFunc("GET", "/v1/slot", service.getSlotEp)
	service.Server.AddEndpointHandler("PUT", "/v1/slot/timeout", admin(service.setTimeoutEp))
	service.Server.AddEndpointHandler("POST", "/v1/slot/reset", admin(service.resetEp))
	service.Server.AddEndpointFunc("GET", "/v1/slot/eras", service.getErasEp)
	service.Server.AddEndpointHandler("POST", "/v1/query", service.queryLimit(http.HandlerFunc(service.queryEp)))
	service.Server.AddEndpointHandler("GET", "/v1/prometheus/metrics",
		promhttp.HandlerFor(service.Registry, promhttp.HandlerOpts{}))
}

func respondWithError(w http.ResponseWriter, statusCode int, err error) {
	err = errors.Join(err, pkgnet.RespondWithString(w, statusCode, err.Error()))
	logger.Error(err)
}

// acquireStatus maps slot acquisition failures to a status code.
func acquireStatus(err error) int {
	if errors.Is(err, slot.ErrConfiguration) || errors.Is(err, slot.ErrCreate) {
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func (service *Service) status() restapi.SlotStatus {
	stats := service.Slot.Stats()
	return restapi.SlotStatus{
		Name:      stats.Name,
		Live:      stats.Live,
		Active:    stats.Active,
		Era:       stats.Era,
		TimeoutMs: stats.Timeout.Milliseconds(),
	}
}

func (service *Service) getSlotEp(w http.ResponseWriter, r *http.Request) {
	err := pkgnet.Respond(w, http.StatusOK, service.status())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err)
	}
}

func (service *Service) setTimeoutEp(w http.ResponseWriter, r *http.Request) {
	request, err := pkgnet.ReadRequestBody[restapi.TimeoutRequest](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if request.TimeoutMs < 0 {
		respondWithError(w, http.StatusBadRequest, errors.New("timeoutMs must not be negative"))
		return
	}

	service.Slot.SetTimeout(time.Duration(request.TimeoutMs) * time.Millisecond)
	logger.Infof("Slot %s idle timeout set to %dms", service.Slot.Name(), request.TimeoutMs)

	err = pkgnet.Respond(w, http.StatusOK, service.status())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err)
	}
}

func (service *Service) resetEp(w http.ResponseWriter, r *http.Request) {
	service.Slot.Reset()
	logger.Infof("Slot %s reset", service.Slot.Name())

	pkgnet.RespondEmpty(w, http.StatusNoContent)
}

func toRestEra(era ledger.Era) restapi.Era {
	return restapi.Era{
		Id:           era.Id,
		Era:          era.Era,
		State:        era.State,
		Started:      era.Started,
		Ended:        era.Ended,
		Reason:       era.Reason,
		CloseError:   era.CloseError,
		Acquisitions: era.Acquisitions,
		PeakActive:   era.PeakActive,
	}
}

func (service *Service) getErasEp(w http.ResponseWriter, r *http.Request) {
	eras, err := service.Ledger.Eras(service.Slot.Name())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err)
		return
	}

	response := make([]restapi.Era, 0, len(eras))
	for _, era := range eras {
		response = append(response, toRestEra(era))
	}

	err = pkgnet.Respond(w, http.StatusOK, response)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err)
	}
}

func (service *Service) queryEp(w http.ResponseWriter, r *http.Request) {
	request, err := pkgnet.ReadRequestBody[restapi.QueryRequest](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	if request.Sql == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("sql is required"))
		return
	}

	session, err := database.Borrow(service.Slot)
	if err != nil {
		respondWithError(w, acquireStatus(err), err)
		return
	}

	value, err := session.Scalar(r.Context(), request.Sql, request.Args...)
	response := restapi.QueryResponse{
		DatabaseId: session.Database().Id(),
		Era:        session.Era(),
		Value:      value,
	}

	// A failed close still answers the query, it only ends the era.
	if closeErr := session.Close(); closeErr != nil {
		logger.Error(closeErr)
	}

	if err != nil {
		respondWithError(w, http.StatusBadRequest, err)
		return
	}

	err = pkgnet.Respond(w, http.StatusOK, response)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err)
	}
}
