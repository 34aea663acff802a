package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ASL66/mirad-upload/internal/config"
	"github.com/ASL66/mirad-upload/internal/constants"
	"github.com/ASL66/mirad-upload/internal/http"
	"github.com/ASL66/mirad-upload/internal/models"
	"github.com/ASL66/mirad-upload/internal/util/sanitize"
)

// UploadFile is one staged file carried by an upload request.
type UploadFile struct {
	Name    string
	Content []byte
}

// ProgressFunc receives byte-level upload progress. sent is monotonically
// non-decreasing and reaches total exactly once on a fully written body.
type ProgressFunc func(sent, total int64)

// DownloadResult is the raw content of one remote file.
type DownloadResult struct {
	Body io.ReadCloser
	// Filename is the server-suggested name from Content-Disposition,
	// falling back to the requested name.
	Filename string
	// Size is the Content-Length, or -1 when the server did not say.
	Size int64
}

// Client talks to the file-manager server. It owns no UI state: every
// method is a single blocking request producing a typed result or one of
// the package's error kinds.
type Client struct {
	httpClient *nethttp.Client // mutations: upload, delete, auth
	readClient *nethttp.Client // idempotent reads, with retry
	baseURL    string

	// shortTimeout bounds list/delete/auth calls. Uploads and downloads
	// run on the caller's context alone.
	shortTimeout time.Duration
}

// NewClient creates a client for the server named in cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	base := strings.TrimSuffix(cfg.ServerURL, "/")
	if base == "" {
		return nil, fmt.Errorf("server URL is empty")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.ServerURL, err)
	}

	// The session lives in a cookie; every call shares one jar so a login
	// performed through the mutation client authorizes the read client too.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := http.ConfigureClient(cfg)
	httpClient.Jar = jar
	readClient := http.ConfigureReadClient(cfg)
	readClient.Jar = jar

	return &Client{
		httpClient:   httpClient,
		readClient:   readClient,
		baseURL:      base,
		shortTimeout: cfg.RequestTimeout(),
	}, nil
}

// shortCtx derives the deadline for a short call (list, delete, auth).
func (c *Client) shortCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.shortTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.shortTimeout)
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DownloadURL returns the direct download URL for a file, with the name
// percent-encoded for the query string.
func (c *Client) DownloadURL(filename string) string {
	return c.baseURL + "/download?file=" + sanitize.EncodeFileName(filename)
}

// Upload POSTs every file in one multipart request under the shared
// "files" field. The batch is all-or-nothing from the client's view: any
// non-2xx status fails the whole batch. progress may be nil.
func (c *Client) Upload(ctx context.Context, files []UploadFile, progress ProgressFunc) (*models.StatusResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreateFormFile(constants.UploadFieldName, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	total := int64(body.Len())
	reader := &progressReader{r: &body, total: total, progress: progress}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+"/upload", reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: parseMessage(raw)}
	}

	var status models.StatusResponse
	if err := json.Unmarshal(raw, &status); err != nil {
		// A 2xx with an unparseable body still counts as accepted.
		return &models.StatusResponse{Success: true}, nil
	}
	// The server can answer 200 with success=false and a reason.
	if !status.Success && status.Message != "" {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: status.Message}
	}
	return &status, nil
}

// ListFiles GETs the authoritative file listing. A 401 maps to
// ErrSessionExpired so callers can prompt re-authentication instead of
// showing a generic error.
func (c *Client) ListFiles(ctx context.Context) ([]models.RemoteFile, error) {
	ctx, cancel := c.shortCtx(ctx)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.baseURL+"/list-files", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.readClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "list files", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == nethttp.StatusUnauthorized {
		return nil, ErrSessionExpired
	}
	if resp.StatusCode != nethttp.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: parseMessage(raw)}
	}

	var listing models.ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode file listing: %w", err)
	}
	return listing.Files, nil
}

// Download GETs a file's raw bytes. The caller owns the returned body.
func (c *Client) Download(ctx context.Context, filename string) (*DownloadResult, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.DownloadURL(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.readClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "download", Err: err}
	}

	if resp.StatusCode != nethttp.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == nethttp.StatusUnauthorized {
			return nil, ErrSessionExpired
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: parseMessage(raw)}
	}

	name := filename
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if v := params["filename"]; v != "" {
				name = sanitize.DecodeFileName(v)
			}
		}
	}

	return &DownloadResult{
		Body:     resp.Body,
		Filename: name,
		Size:     resp.ContentLength,
	}, nil
}

// Delete removes one remote file. The filename is percent-encoded into the
// query string; a JSON body on success is tolerated but not required.
func (c *Client) Delete(ctx context.Context, filename string) error {
	ctx, cancel := c.shortCtx(ctx)
	defer cancel()

	deleteURL := c.baseURL + "/delete?file=" + sanitize.EncodeFileName(filename)
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "delete", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == nethttp.StatusUnauthorized {
			return ErrSessionExpired
		}
		return &ServerError{StatusCode: resp.StatusCode, Message: parseMessage(raw)}
	}
	return nil
}

// Login authenticates with form-encoded credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*models.StatusResponse, error) {
	return c.postForm(ctx, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

// Register creates an account with form-encoded credentials.
func (c *Client) Register(ctx context.Context, username, password string) (*models.StatusResponse, error) {
	return c.postForm(ctx, "/register", url.Values{
		"username": {username},
		"password": {password},
	})
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.postForm(ctx, "/logout", url.Values{})
	return err
}

// CheckLogin reports whether the server still considers the session live.
func (c *Client) CheckLogin(ctx context.Context) (*models.LoginStatus, error) {
	ctx, cancel := c.shortCtx(ctx)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.baseURL+"/check-login", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create check-login request: %w", err)
	}

	resp, err := c.readClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "check login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: parseMessage(raw)}
	}

	var status models.LoginStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode login status: %w", err)
	}
	return &status, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*models.StatusResponse, error) {
	ctx, cancel := c.shortCtx(ctx)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: strings.TrimPrefix(path, "/"), Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: parseMessage(raw)}
	}

	var status models.StatusResponse
	if err := json.Unmarshal(raw, &status); err != nil {
		return &models.StatusResponse{Success: true}, nil
	}
	if !status.Success && status.Message != "" {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: status.Message}
	}
	return &status, nil
}

// parseMessage extracts the server-supplied display message from a failure
// body when it parses as structured data; otherwise it returns "".
func parseMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// progressReader reports bytes consumed from the request body. The HTTP
// transport reads the body as it writes to the wire, so consumed bytes are
// the closest client-side proxy for bytes sent.
type progressReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		if pr.progress != nil {
			pr.progress(pr.sent, pr.total)
		}
	}
	return n, err
}
