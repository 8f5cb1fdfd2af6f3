package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Registry error codes returned in the body of 404 responses.
const (
	codeSubjectNotFound = 40401
	codeVersionNotFound = 40402
)

// RegistryError is a non-2xx response from the schema registry.
type RegistryError struct {
	Op         string
	StatusCode int
	Code       int    `json:"error_code"`
	Message    string `json:"message"`
}

func (e *RegistryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("schema registry %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("schema registry %s failed with status %d (code %d): %s", e.Op, e.StatusCode, e.Code, e.Message)
}

func isSubjectMissing(err error) bool {
	var regErr *RegistryError
	if !errors.As(err, &regErr) {
		return false
	}
	switch regErr.Code {
	case codeSubjectNotFound, codeVersionNotFound:
		return true
	}
	return regErr.StatusCode == http.StatusNotFound && regErr.Code == 0
}

// SchemaRegistryClient registers and resolves JSON schemas in a Confluent-compatible registry.
type SchemaRegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSchemaRegistryClient constructs a client with a ten second timeout.
func NewSchemaRegistryClient(baseURL string) *SchemaRegistryClient {
	return &SchemaRegistryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// EnsureSchema returns the id of the latest version of subject, registering schema when
// the subject does not exist yet.
func (c *SchemaRegistryClient) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	id, err := c.latestID(ctx, subject)
	if err == nil {
		return id, nil
	}
	if !isSubjectMissing(err) {
		return 0, err
	}
	return c.register(ctx, subject, schema)
}

func (c *SchemaRegistryClient) subjectURL(subject, suffix string) string {
	return fmt.Sprintf("%s/subjects/%s/versions%s", c.baseURL, url.PathEscape(subject), suffix)
}

func (c *SchemaRegistryClient) latestID(ctx context.Context, subject string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.subjectURL(subject, "/latest"), nil)
	if err != nil {
		return 0, err
	}
	return c.doForID(req, "lookup")
}

func (c *SchemaRegistryClient) register(ctx context.Context, subject string, schema string) (int, error) {
	body, err := json.Marshal(map[string]any{
		"schemaType": "JSON",
		"schema":     schema,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.subjectURL(subject, ""), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
	return c.doForID(req, "register")
}

func (c *SchemaRegistryClient) doForID(req *http.Request, op string) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("schema registry %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		regErr := &RegistryError{Op: op, StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if jsonErr := json.Unmarshal(data, regErr); jsonErr != nil {
			regErr.Message = strings.TrimSpace(string(data))
		}
		return 0, regErr
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode schema registry %s response: %w", op, err)
	}
	return payload.ID, nil
}
