package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"explanation-coach-service/internal/models"
)

// Client talks to the service HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 3 * time.Minute},
	}
}

type historyPage struct {
	Count    int              `json:"count"`
	Attempts []models.Attempt `json:"attempts"`
}

// Analyze submits an explanation for analysis.
func (c *Client) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	var resp models.AnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists the newest attempts.
func (c *Client) History(ctx context.Context, limit int) ([]models.Attempt, error) {
	path := "/api/v1/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var page historyPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Attempts, nil
}

// Attempt fetches one attempt by id.
func (c *Client) Attempt(ctx context.Context, id string) (*models.Attempt, error) {
	var a models.Attempt
	if err := c.do(ctx, http.MethodGet, "/api/v1/history/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
