package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/customers/internal/version"
)

const transportError = "transport_error"

type customerBody struct {
	ID        string `json:"id,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Age       *int   `json:"age,omitempty"`
}

// apiClient - тонкий HTTP-клиент API клиентов, записывающий каждый вызов в collector.
type apiClient struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	col     *collector
}

func newAPIClient(cfg config, col *collector) *apiClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.concurrency * 2
	transport.MaxIdleConnsPerHost = cfg.concurrency * 2

	return &apiClient{
		http:    &http.Client{Transport: transport},
		baseURL: cfg.baseURL,
		timeout: cfg.timeout,
		col:     col,
	}
}

// do выполняет запрос и декодирует JSON-ответ в out при ожидаемом статусе.
func (c *apiClient) do(operation, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.col.record(operation, time.Since(start), transportError, false)
		return err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	c.col.record(operation, time.Since(start), strconv.Itoa(resp.StatusCode), resp.StatusCode == want && readErr == nil)
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: expected %d, got %d: %s", method, path, want, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// runScenario прогоняет один сценарий; время и итог записываются как "scenario".
func runScenario(client *apiClient, cfg config, index int, runID string) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		client.col.record(scenarioKey, time.Since(start), status, err == nil)
	}()

	age := index % 151
	var created customerBody
	if err := client.do("create", http.MethodPost, "/customers", customerBody{
		Firstname: fmt.Sprintf("%s-%d", cfg.namePrefix, index),
		Lastname:  runID,
		Age:       &age,
	}, http.StatusCreated, &created); err != nil {
		return err
	}
	if created.ID == "" {
		return errors.New("create response returned empty id")
	}
	path := "/customers/" + created.ID

	var fetched customerBody
	if err := client.do("get", http.MethodGet, path, nil, http.StatusOK, &fetched); err != nil {
		return err
	}
	if fetched.ID != created.ID {
		return fmt.Errorf("get returned id %q, want %q", fetched.ID, created.ID)
	}

	if cfg.mode == modeCreate {
		return nil
	}

	nextAge := (age + 1) % 151
	var updated customerBody
	if err := client.do("update", http.MethodPut, path, customerBody{Age: &nextAge}, http.StatusOK, &updated); err != nil {
		return err
	}
	if updated.Age == nil || *updated.Age != nextAge || updated.Firstname != created.Firstname {
		return fmt.Errorf("update returned unexpected customer %+v", updated)
	}

	if cfg.listEvery > 0 && index%cfg.listEvery == 0 {
		var all []customerBody
		if err := client.do("list", http.MethodGet, "/customers", nil, http.StatusOK, &all); err != nil {
			return err
		}
	}

	return client.do("delete", http.MethodDelete, path, nil, http.StatusNoContent, nil)
}
