/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func validateResponse(response *http.Response) error {
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		if len(body) > 0 {
			return fmt.Errorf("error received from server, code %d\nmessage: %s", response.StatusCode, string(body))
		}

		return fmt.Errorf("error received from server, code %d", response.StatusCode)
	}

	return nil
}

func JsonReaderFromObject[T any](object T) (io.Reader, error) {
	data, err := json.Marshal(object)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}
