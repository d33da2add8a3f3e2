// Package service talks to the external pumping calculation service.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
)

const (
	CalculatePath = "/calculate"
	ReportPath    = "/generate-report"
)

// ServiceError is a non-success answer from either endpoint. StatusCode is the
// HTTP status; Message is set when the service explained itself in its error
// envelope.
type ServiceError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
}

// DecodeError means a body that should have been JSON was not.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Calculate posts the request to the compute endpoint. There is no retry.
func (c *Client) Calculate(ctx context.Context, req pumping.Request) (pumping.Response, error) {
	res, err := c.post(ctx, CalculatePath, req)
	if err != nil {
		return pumping.Response{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return pumping.Response{}, statusError(CalculatePath, res)
	}
	var out pumping.Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return pumping.Response{}, &DecodeError{Endpoint: CalculatePath, Err: err}
	}
	if out.Error != "" {
		return pumping.Response{}, &ServiceError{Endpoint: CalculatePath, StatusCode: res.StatusCode, Message: out.Error}
	}
	return out, nil
}

// GenerateReport posts the request to the report endpoint and returns the
// opaque report body.
func (c *Client) GenerateReport(ctx context.Context, req pumping.Request) ([]byte, error) {
	res, err := c.post(ctx, ReportPath, req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, statusError(ReportPath, res)
	}
	// The service answers 200 with a JSON envelope when report generation fails.
	if isJSON(res.Header.Get("Content-Type")) {
		return nil, statusError(ReportPath, res)
	}
	blob, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading report: %w", ReportPath, err)
	}
	return blob, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// statusError builds a ServiceError, lifting the message out of a JSON
// {"error": ...} or {"detail": ...} envelope when there is one.
func statusError(endpoint string, res *http.Response) *ServiceError {
	se := &ServiceError{Endpoint: endpoint, StatusCode: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var env struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(body, &env) == nil {
		switch {
		case env.Error != "":
			se.Message = env.Error
		case env.Detail != nil:
			se.Message = fmt.Sprint(env.Detail)
		}
	}
	return se
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}
