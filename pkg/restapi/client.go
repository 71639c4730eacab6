/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"context"
	"io"
	"net/http"
	"net/url"

	pkgnet "github.com/Juice-Labs/borrow/pkg/net"
)

type Client struct {
	Client  *http.Client
	Scheme  string
	Address string
	// Token is sent as a bearer token when set.
	Token string
}

func (api Client) do(ctx context.Context, method string, path string, contentType string, body io.Reader) (*http.Response, error) {
	url := url.URL{
		Scheme: api.Scheme,
		Host:   api.Address,
		Path:   path,
	}

	request, err := http.NewRequestWithContext(ctx, method, url.String(), body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		request.Header.Add("Content-Type", contentType)
	}
	if api.Token != "" {
		request.Header.Add("Authorization", "Bearer "+api.Token)
	}

	return api.Client.Do(request)
}

func (api Client) get(ctx context.Context, path string) (*http.Response, error) {
	return api.do(ctx, http.MethodGet, path, "", nil)
}

func (api Client) post(ctx context.Context, path string) (*http.Response, error) {
	return api.do(ctx, http.MethodPost, path, "", nil)
}

func (api Client) postWithJson(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return api.do(ctx, http.MethodPost, path, "application/json", body)
}

func (api Client) putWithJson(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return api.do(ctx, http.MethodPut, path, "application/json", body)
}

func (api Client) Status(ctx context.Context) (SlotStatus, error) {
	response, err := api.get(ctx, "/v1/slot")
	if err != nil {
		return SlotStatus{}, err
	}
	defer response.Body.Close()

	return pkgnet.ReadResponseBody[SlotStatus](response)
}

func (api Client) Eras(ctx context.Context) ([]Era, error) {
	response, err := api.get(ctx, "/v1/slot/eras")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	return pkgnet.ReadResponseBody[[]Era](response)
}

func (api Client) SetTimeout(ctx context.Context, timeoutMs int64) (SlotStatus, error) {
	body, err := JsonReaderFromObject(TimeoutRequest{TimeoutMs: timeoutMs})
	if err != nil {
		return SlotStatus{}, err
	}

	response, err := api.putWithJson(ctx, "/v1/slot/timeout", body)
	if err != nil {
		return SlotStatus{}, err
	}
	defer response.Body.Close()

	return pkgnet.ReadResponseBody[SlotStatus](response)
}

func (api Client) Reset(ctx context.Context) error {
	response, err := api.post(ctx, "/v1/slot/reset")
	if err != nil {
		return err
	}
	defer response.Body.Close()

	return validateResponse(response)
}

func (api Client) Query(ctx context.Context, request QueryRequest) (QueryResponse, error) {
	body, err := JsonReaderFromObject(request)
	if err != nil {
		return QueryResponse{}, err
	}

	response, err := api.postWithJson(ctx, "/v1/query", body)
	if err != nil {
		return QueryResponse{}, err
	}
	defer response.Body.Close()

	return pkgnet.ReadResponseBody[QueryResponse](response)
}
