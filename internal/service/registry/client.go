// Package registry talks to the external organization registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/ougirez/certzone/internal/pkg/logger"
)

var (
	// ErrUnavailable is a transient failure: transport error, timeout or 5xx.
	ErrUnavailable = errors.New("registry unavailable")
	// ErrNotFound is returned by Detail when the record link leads nowhere.
	ErrNotFound = errors.New("registry record not found")
	// ErrWrongFormat means the registry contract changed and must not be treated as transient.
	ErrWrongFormat = errors.New("registry response has wrong format")
)

const (
	searchPath   = "api/organizations/"
	maxBodyBytes = 4 << 20
)

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	cache    Cache
	validate *validator.Validate
}

// NewClient builds a client for the registry at baseURL. A nil cache disables caching.
func NewClient(baseURL string, httpClient *http.Client, cache Cache) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("registry url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &Client{
		baseURL:  u,
		http:     httpClient,
		cache:    cache,
		validate: validator.New(),
	}, nil
}

// Search lists registry entries with the given INN.
func (c *Client) Search(ctx context.Context, inn string, isMain bool) (*dto.RegistryList, error) {
	u := c.resolve(searchPath)
	q := u.Query()
	q.Set("inn", inn)
	q.Set("is_main", strconv.FormatBool(isMain))
	u.RawQuery = q.Encode()

	logger.Infof(ctx, "registry search %s", u.String())

	body, status, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if err = checkStatus(status, false); err != nil {
		return nil, err
	}

	var list dto.RegistryList
	if err = c.decode(body, dto.RegistryListKeys, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Detail fetches the full record behind a search result's relative_addr.
func (c *Client) Detail(ctx context.Context, relativeAddr string) (*dto.RegistryOrganization, error) {
	if body, ok := c.cache.Get(ctx, relativeAddr); ok {
		var org dto.RegistryOrganization
		if err := c.decode(body, dto.RegistryDetailKeys, &org); err == nil {
			logger.Debugf(ctx, "registry detail %s served from cache", relativeAddr)
			return &org, nil
		}
		// битый кеш просто игнорируем
	}

	rel, err := url.Parse(relativeAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: relative_addr %q: %v", ErrWrongFormat, relativeAddr, err)
	}
	u := c.resolve(rel.Path)
	u.RawQuery = rel.RawQuery

	logger.Infof(ctx, "registry detail %s", u.String())

	body, status, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if err = checkStatus(status, true); err != nil {
		return nil, err
	}

	var org dto.RegistryOrganization
	if err = c.decode(body, dto.RegistryDetailKeys, &org); err != nil {
		return nil, err
	}

	c.cache.Set(ctx, relativeAddr, body)
	return &org, nil
}

func (c *Client) resolve(path string) *url.URL {
	return c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
}

func (c *Client) get(ctx context.Context, u *url.URL) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	return body, resp.StatusCode, nil
}

func checkStatus(status int, detail bool) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	case status == http.StatusNotFound && detail:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrWrongFormat, status)
	}
}

// decode checks that every required key is present, then decodes and validates dst.
func (c *Client) decode(body []byte, keys []string, dst any) error {
	var raw map[string]any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: not a JSON object: %v", ErrWrongFormat, err)
	}
	for _, key := range keys {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("%w: key %q is missing", ErrWrongFormat, key)
		}
	}

	if err := sonic.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongFormat, err)
	}
	if err := c.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongFormat, err)
	}
	return nil
}
