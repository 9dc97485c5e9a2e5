// Package inference is the client for the remote fire-scoring service. The
// transport is a single HTTP POST with a JSON body and a JSON envelope in
// response.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/LeeinUITk17/fwserver/pkg/models"
)

type Client struct {
	URL  string
	HTTP *http.Client
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type predictResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"data"`
	Message string `json:"message"`
}

func (c *Client) Predict(ctx context.Context, imageBase64 string) (*models.Prediction, error) {
	payload, err := json.Marshal(predictRequest{ImageBase64: imageBase64})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference service returned status code %d: %s", resp.StatusCode, body.Message)
	}
	if !body.Success || body.Data == nil {
		if body.Message != "" {
			return nil, fmt.Errorf("prediction failed: %s", body.Message)
		}
		return nil, fmt.Errorf("prediction failed: unknown error")
	}

	return &models.Prediction{
		Label:      body.Data.Label,
		Confidence: body.Data.Confidence,
	}, nil
}
