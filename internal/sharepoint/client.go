// Package sharepoint implements a cookie-authenticated client for the
// SharePoint Online REST API. Authentication follows the legacy SAML
// flow: a security token is obtained from the Microsoft STS and redeemed
// at the site for FedAuth session cookies.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/provanalytics/provsync/internal/config"
)

// FileInfo describes a file in a document library folder.
type FileInfo struct {
	Name              string      `json:"Name"`
	ServerRelativeURL string      `json:"ServerRelativeUrl"`
	TimeLastModified  time.Time   `json:"TimeLastModified"`
	Length            json.Number `json:"Length"`
}

// Client talks to a single SharePoint site.
type Client struct {
	siteURL  string // full site URL, e.g. https://corp.sharepoint.com/sites/analytics
	origin   string // scheme://host
	username string
	password string
	stsURL   string
	http     *http.Client
	logger   *slog.Logger
}

// Option customizes a Client. Used by tests to point at a fake STS.
type Option func(*Client)

// WithSTSURL overrides the security token service endpoint.
func WithSTSURL(u string) Option {
	return func(c *Client) { c.stsURL = u }
}

// WithHTTPClient replaces the underlying HTTP client. The client's jar
// is still installed so auth cookies are retained.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Connect authenticates against the site and returns a ready client.
func Connect(ctx context.Context, cfg config.SharePointConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	u, err := url.Parse(cfg.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid site URL %q", cfg.SiteURL)
	}

	c := &Client{
		siteURL:  strings.TrimRight(cfg.SiteURL, "/"),
		origin:   u.Scheme + "://" + u.Host,
		username: cfg.Username,
		password: cfg.Password,
		stsURL:   DefaultSTSURL,
		http:     &http.Client{Timeout: 2 * time.Minute},
		logger:   logger.With("component", "sharepoint"),
	}
	for _, opt := range opts {
		opt(c)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c.http.Jar = jar

	c.logger.Debug("requesting security token", "sts", c.stsURL, "user", c.username)
	token, err := c.requestToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("sharepoint authentication failed: %w", err)
	}
	if err := c.signIn(ctx, token); err != nil {
		return nil, fmt.Errorf("sharepoint authentication failed: %w", err)
	}
	c.logger.Info("authenticated to sharepoint", "site", c.siteURL)
	return c, nil
}

func (c *Client) hasAuthCookie() bool {
	u, err := url.Parse(c.origin)
	if err != nil {
		return false
	}
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == "FedAuth" || ck.Name == "rtFa" {
			return true
		}
	}
	return false
}

// Download fetches a file's contents by server-relative path.
func (c *Client) Download(ctx context.Context, serverRelPath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/_api/web/GetFileByServerRelativeUrl('%s')/$value",
		c.siteURL, escapePath(serverRelPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download of %s failed: %w", serverRelPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, restError("download", serverRelPath, resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download of %s failed: %w", serverRelPath, err)
	}
	c.logger.Debug("downloaded file", "path", serverRelPath, "bytes", len(data))
	return data, nil
}

// Upload writes a file into a document library folder, overwriting any
// existing file of the same name.
func (c *Client) Upload(ctx context.Context, folder, name string, content []byte) error {
	digest, err := c.formDigest(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/_api/web/GetFolderByServerRelativeUrl('%s')/Files/add(url='%s',overwrite=true)",
		c.siteURL, escapePath(folder), escapePath(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")
	req.Header.Set("X-RequestDigest", digest)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload of %s failed: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return restError("upload", name, resp)
	}
	c.logger.Info("uploaded file", "folder", folder, "name", name, "bytes", len(content))
	return nil
}

// ListFolder returns the files in a document library folder.
func (c *Client) ListFolder(ctx context.Context, folder string) ([]FileInfo, error) {
	endpoint := fmt.Sprintf("%s/_api/web/GetFolderByServerRelativeUrl('%s')/Files",
		c.siteURL, escapePath(folder))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing of %s failed: %w", folder, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, restError("listing", folder, resp)
	}

	var payload struct {
		Value []FileInfo `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("listing of %s returned malformed JSON: %w", folder, err)
	}
	return payload.Value, nil
}

// formDigest obtains the request digest required for write operations.
func (c *Client) formDigest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.siteURL+"/_api/contextinfo", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("contextinfo request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", restError("contextinfo", c.siteURL, resp)
	}

	var payload struct {
		FormDigestValue string `json:"FormDigestValue"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("contextinfo returned malformed JSON: %w", err)
	}
	if payload.FormDigestValue == "" {
		return "", fmt.Errorf("contextinfo returned no form digest")
	}
	return payload.FormDigestValue, nil
}

func restError(op, subject string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg != "" {
		return fmt.Errorf("%s of %s failed: %s: %s", op, subject, resp.Status, msg)
	}
	return fmt.Errorf("%s of %s failed: %s", op, subject, resp.Status)
}

// escapePath doubles single quotes for embedding in a REST URL string
// literal.
func escapePath(p string) string {
	return strings.ReplaceAll(p, "'", "''")
}
