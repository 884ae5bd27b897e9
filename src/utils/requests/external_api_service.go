package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"assetsync/src/utils"
)

// ExternalAPIService is a struct representing a configurable external service
type ExternalAPIService struct {
	client *http.Client
}

// NewExternalAPIService creates a new instance of ExternalAPIService
func NewExternalAPIService(client *http.Client) *ExternalAPIService {
	if client == nil {
		client = &http.Client{}
	}
	return &ExternalAPIService{client: client}
}

// makeRequest is a helper function to make HTTP requests, supporting optional
// query parameters and custom headers
func (s *ExternalAPIService) makeRequest(ctx context.Context, method, endpoint string, params url.Values, body interface{}, headers map[string]string) (*http.Response, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	var err error
	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, utils.NewHTTPError(resp.StatusCode, resp.Status)
	}
	return resp, nil
}

// GetWithHeaders makes a GET request with custom headers, accepting optional query parameters
func (s *ExternalAPIService) GetWithHeaders(ctx context.Context, endpoint string, params url.Values, headers map[string]string) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodGet, endpoint, params, nil, headers)
}

// PostWithHeaders makes a POST request with custom headers
func (s *ExternalAPIService) PostWithHeaders(ctx context.Context, endpoint string, body interface{}, headers map[string]string) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodPost, endpoint, nil, body, headers)
}
