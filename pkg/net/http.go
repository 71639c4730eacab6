/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package net

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize bounds request bodies read by ReadRequestBody.
const MaxBodySize = 1 << 20

func Respond[T any](w http.ResponseWriter, code int, obj T) error {
	data, err := json.Marshal(obj)
	if err == nil {
		w.Header().Add("Content-Type", "application/json")
		w.Header().Add("Content-Length", fmt.Sprint(len(data)))
		w.WriteHeader(code)
		_, err = w.Write(data)
	}

	return err
}

func RespondWithString(w http.ResponseWriter, code int, msg string) error {
	w.Header().Add("Content-Type", "text/plain")
	w.Header().Add("Content-Length", fmt.Sprint(len(msg)))
	w.WriteHeader(code)
	_, err := io.WriteString(w, msg)
	return err
}

func RespondEmpty(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

func ReadRequestBody[T any](r *http.Request) (T, error) {
	return ReadBody[T](r.Header, http.StatusOK, io.LimitReader(r.Body, MaxBodySize))
}

func ReadResponseBody[T any](r *http.Response) (T, error) {
	return ReadBody[T](r.Header, r.StatusCode, r.Body)
}

func ReadBody[T any](header http.Header, statusCode int, body io.Reader) (T, error) {
	var value T

	msg, err := ReadBodyAsBytes(statusCode, body)
	if err != nil {
		return value, err
	}

	if !strings.HasPrefix(header.Get("Content-Type"), "application/json") {
		return value, fmt.Errorf("expected Content-Type=application/json, received %s", header.Get("Content-Type"))
	}

	err = json.Unmarshal(msg, &value)
	return value, err
}

func ReadBodyAsBytes(statusCode int, body io.Reader) ([]byte, error) {
	message, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		if len(message) > 0 {
			return nil, fmt.Errorf("error received from server, code %d\nmessage: %s", statusCode, string(message))
		}

		return nil, fmt.Errorf("error received from server, code %d", statusCode)
	}

	return message, nil
}
