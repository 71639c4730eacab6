/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import "time"

const (
	EraLive  = "live"
	EraEnded = "ended"
)

type SlotStatus struct {
	Name      string `json:"name"`
	Live      bool   `json:"live"`
	Active    int    `json:"active"`
	Era       uint64 `json:"era"`
	TimeoutMs int64  `json:"timeoutMs"`
}

type Era struct {
	Id           string    `json:"id"`
	Era          uint64    `json:"era"`
	State        string    `json:"state"`
	Started      time.Time `json:"started"`
	Ended        time.Time `json:"ended"`
	Reason       string    `json:"reason,omitempty"`
	CloseError   string    `json:"closeError,omitempty"`
	Acquisitions int       `json:"acquisitions"`
	PeakActive   int       `json:"peakActive"`
}

type TimeoutRequest struct {
	TimeoutMs int64 `json:"timeoutMs"`
}

type QueryRequest struct {
	Sql  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

type QueryResponse struct {
	DatabaseId string `json:"databaseId"`
	Era        uint64 `json:"era"`
	Value      any    `json:"value"`
}
