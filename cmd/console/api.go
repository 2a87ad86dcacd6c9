package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/survival-engine/internal/handlers"
	"github.com/jwebster45206/survival-engine/pkg/sim"
)

// APIClient talks to the survival engine HTTP API.
type APIClient struct {
	client  *http.Client
	baseURL string
}

func NewAPIClient(client *http.Client, baseURL string) *APIClient {
	return &APIClient{client: client, baseURL: baseURL}
}

func (c *APIClient) Healthy() bool {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *APIClient) CreateAnimal(req handlers.CreateAnimalRequest) (*handlers.AnimalResponse, error) {
	var out handlers.AnimalResponse
	if err := c.do(http.MethodPost, "/v1/animals", req, http.StatusCreated, &out); err != nil {
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}
	return &out, nil
}

func (c *APIClient) GetAnimal(id uuid.UUID) (*handlers.AnimalResponse, error) {
	var out handlers.AnimalResponse
	if err := c.do(http.MethodGet, "/v1/animals/"+id.String(), nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to get animal: %w", err)
	}
	return &out, nil
}

func (c *APIClient) BeginTurn(id uuid.UUID) (*handlers.TurnResponse, error) {
	var out handlers.TurnResponse
	if err := c.do(http.MethodPost, "/v1/animals/"+id.String()+"/turns", nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to begin turn: %w", err)
	}
	return &out, nil
}

func (c *APIClient) Choose(id uuid.UUID, choiceID string) (*sim.TurnResult, error) {
	var out sim.TurnResult
	req := handlers.ChoiceRequest{ChoiceID: choiceID}
	if err := c.do(http.MethodPost, "/v1/animals/"+id.String()+"/choice", req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to submit choice: %w", err)
	}
	return &out, nil
}

// RestAll sets the resting flag on every injury.
func (c *APIClient) RestAll(id uuid.UUID, resting bool) (*handlers.AnimalResponse, error) {
	var out handlers.AnimalResponse
	req := handlers.RestRequest{Resting: resting}
	if err := c.do(http.MethodPut, "/v1/animals/"+id.String()+"/rest", req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to set rest: %w", err)
	}
	return &out, nil
}

func (c *APIClient) Journal(id uuid.UUID) (*handlers.JournalResponse, error) {
	var out handlers.JournalResponse
	if err := c.do(http.MethodGet, "/v1/animals/"+id.String()+"/journal", nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return &out, nil
}

func (c *APIClient) do(method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
