// Package client talks to the cloud-drive HTTP API on behalf of the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud-drive/internal/models"
)

const DefaultTimeout = 5 * time.Minute

var ErrNotLoggedIn = errors.New("not logged in")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	return c.token
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: %d - %s", e.StatusCode, e.Message)
}

// Is matches another *APIError with the same status code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

func parseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for tokens and keeps the access token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	var tokens Tokens
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	c.token = tokens.AccessToken
	return &tokens, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns the children of parentID; an empty id lists the drive root.
func (c *Client) List(ctx context.Context, parentID string) ([]models.StorageNode, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	path := "/files"
	if parentID != "" {
		path += "?" + url.Values{"parentId": {parentID}}.Encode()
	}

	var nodes []models.StorageNode
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

type UploadResult struct {
	FileID      string `json:"fileId"`
	StorageUsed int64  `json:"storageUsed"`
}

// Upload streams content as a multipart form without buffering it in memory.
func (c *Client) Upload(ctx context.Context, parentID, name string, content io.Reader) (*UploadResult, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if parentID != "" {
				if err := writer.WriteField("parentId", parentID); err != nil {
					return err
				}
			}
			part, err := writer.CreateFormFile("file", name)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, content); err != nil {
				return err
			}
			return writer.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/files", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		pr.Close()
		return nil, err
	}
	return &result, nil
}

func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	if c.token == "" {
		return "", ErrNotLoggedIn
	}
	var resp struct {
		FolderID string `json:"folderId"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/files", map[string]string{
		"name":     name,
		"parentId": parentID,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.FolderID, nil
}

func (c *Client) Share(ctx context.Context, fileID string) (string, error) {
	if c.token == "" {
		return "", ErrNotLoggedIn
	}
	var resp struct {
		ShareLink string `json:"shareLink"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/share", map[string]string{"fileId": fileID}, &resp); err != nil {
		return "", err
	}
	return resp.ShareLink, nil
}
