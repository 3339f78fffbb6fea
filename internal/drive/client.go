package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const userAgent = "drivemirror/0.1"

// folderMimeType is the Drive API marker distinguishing folders from files.
const folderMimeType = "application/vnd.google-apps.folder"

// Refresher triggers a token refresh after an authorization failure.
// Implemented by Authenticator; tests substitute a recording fake.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Client is an HTTP client for the Drive files API. It reads a token
// snapshot from the shared store before each call and reactively triggers
// a refresh when a call comes back 401. The failing call itself is not
// retried; the caller decides what a failed step means.
type Client struct {
	apiBase    string
	uploadBase string
	httpClient *http.Client
	store      *TokenStore
	auth       Refresher
	logger     *slog.Logger
}

// NewClient creates a Drive API client. apiBase and uploadBase are typically
// both "https://www.googleapis.com"; tests point them at httptest servers.
// httpClient may be nil to use http.DefaultClient.
func NewClient(
	apiBase, uploadBase string, httpClient *http.Client,
	store *TokenStore, auth Refresher, logger *slog.Logger,
) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiBase:    apiBase,
		uploadBase: uploadBase,
		httpClient: httpClient,
		store:      store,
		auth:       auth,
		logger:     logger,
	}
}

type createFolderRequest struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType"`
	Parents  []string `json:"parents,omitempty"`
}

type createFolderResponse struct {
	ID string `json:"id"`
}

// CreateFolder creates a remote folder and returns its identifier.
// parentID may be empty for a top-level folder. On 401 a refresh is
// triggered and an error wrapping ErrUnauthorized is returned; the caller
// treats the step as failed rather than retrying the same call.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	c.logger.Debug("creating folder",
		slog.String("name", name),
		slog.String("parent_id", parentID),
	)

	reqBody := createFolderRequest{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		reqBody.Parents = []string{parentID}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("drive: marshaling create folder request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apiBase+"/drive/v3/files", bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("drive: creating folder request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("drive: create folder %q: %w", name, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp); err != nil {
		return "", fmt.Errorf("drive: create folder %q: %w", name, err)
	}

	var created createFolderResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&created); decErr != nil {
		return "", fmt.Errorf("drive: decoding create folder response: %w", decErr)
	}

	if created.ID == "" {
		return "", fmt.Errorf("drive: create folder %q: response has no id: %w", name, ErrMalformedResponse)
	}

	c.logger.Info("folder created",
		slog.String("name", name),
		slog.String("id", created.ID),
	)

	return created.ID, nil
}

// do sends the request with the current token snapshot and the standard
// headers. The snapshot is read immediately before the call so a refresh
// completing earlier is observed, and one replacing the token mid-call
// is not.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.store.Read())
	req.Header.Set("User-Agent", userAgent)

	return c.httpClient.Do(req)
}

// checkStatus classifies a non-2xx response into an error. A 401 triggers
// the refresh protocol before returning; if the refresh itself fails, that
// error is attached so the log shows why a retry would be pointless.
func (c *Client) checkStatus(ctx context.Context, resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		body = []byte("(failed to read response body)")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("token expired, triggering refresh")

		if refreshErr := c.auth.Refresh(ctx); refreshErr != nil {
			return fmt.Errorf("token expired and refresh failed: %w", refreshErr)
		}

		return fmt.Errorf("token expired: %w", ErrUnauthorized)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Err:        classifyStatus(resp.StatusCode),
	}
}
