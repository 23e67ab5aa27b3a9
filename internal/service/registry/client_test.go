package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listBody = `{"count": 1, "next": null, "previous": null, "date_info": "2024-03-01",
		"results": [{"relative_addr": "/api/organizations/42/", "inn": "2128000002"}]}`
	detailBody = `{"full_name": "АО Ромашка", "short_name": null, "inn": "2128000002", "kpp": "213001002",
		"ogrn": "1022100000002", "factual_address": "г. Чебоксары", "region_code": "21", "extra": 1}`
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cache Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", srv.Client(), cache)
	require.NoError(t, err)
	return c
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/organizations/", r.URL.Path)
		assert.Equal(t, "2128000002", r.URL.Query().Get("inn"))
		assert.Equal(t, "true", r.URL.Query().Get("is_main"))
		_, _ = w.Write([]byte(listBody))
	}, nil)

	list, err := c.Search(context.Background(), "2128000002", true)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "/api/organizations/42/", list.Results[0].RelativeAddr)
}

func TestClient_Detail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/organizations/42/", r.URL.Path)
		_, _ = w.Write([]byte(detailBody))
	}, nil)

	org, err := c.Detail(context.Background(), "/api/organizations/42/")
	require.NoError(t, err)
	assert.Equal(t, "АО Ромашка", org.FullName)
	assert.Nil(t, org.ShortName)
	require.NotNil(t, org.RegionCode)
	assert.EqualValues(t, 21, *org.RegionCode)
}

func TestClient_WrongFormat(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		detail bool
	}{
		{name: "list not json", body: "<html>oops</html>"},
		{name: "list is an array", body: `[]`},
		{name: "list missing date_info", body: `{"count": 0, "next": null, "previous": null, "results": []}`},
		{name: "list result without link", body: `{"count": 1, "next": null, "previous": null, "date_info": null, "results": [{}]}`},
		{name: "list bad request", body: `{}`, status: http.StatusBadRequest},
		{name: "detail missing region_code", detail: true,
			body: `{"full_name": "x", "short_name": "x", "inn": "2128000002", "kpp": "213001002", "ogrn": "1022100000002", "factual_address": ""}`},
		{name: "detail bad inn", detail: true,
			body: `{"full_name": "x", "short_name": "x", "inn": "12", "kpp": "", "ogrn": "", "factual_address": "", "region_code": 21}`},
		{name: "detail region not a number", detail: true,
			body: `{"full_name": "x", "short_name": "x", "inn": "2128000002", "kpp": "", "ogrn": "", "factual_address": "", "region_code": "XXI"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			var err error
			if tt.detail {
				_, err = c.Detail(context.Background(), "/api/organizations/1/")
			} else {
				_, err = c.Search(context.Background(), "2128000002", true)
			}
			assert.ErrorIs(t, err, ErrWrongFormat)
		})
	}
}

func TestClient_Unavailable(t *testing.T) {
	t.Run("5xx", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, nil)
		_, err := c.Search(context.Background(), "2128000002", true)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		c, err := NewClient(addr, nil, nil)
		require.NoError(t, err)
		_, err = c.Search(context.Background(), "2128000002", true)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}, nil)
		c.http.Timeout = 20 * time.Millisecond

		_, err := c.Detail(context.Background(), "/api/organizations/1/")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestClient_DetailNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, nil)

	_, err := c.Detail(context.Background(), "/api/organizations/1/")
	assert.ErrorIs(t, err, ErrNotFound)
}

type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok
}

func (c *mapCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = body
}

func TestClient_DetailCached(t *testing.T) {
	var calls atomic.Int32
	cache := &mapCache{m: map[string][]byte{}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(detailBody))
	}, cache)

	for i := 0; i < 3; i++ {
		org, err := c.Detail(context.Background(), "/api/organizations/42/")
		require.NoError(t, err)
		assert.Equal(t, "2128000002", org.INN)
	}
	assert.Equal(t, int32(1), calls.Load())

	// испорченная запись в кеше не мешает сходить в реестр
	cache.Set(context.Background(), "/api/organizations/42/", []byte("garbage"))
	_, err := c.Detail(context.Background(), "/api/organizations/42/")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("registry.local/api", nil, nil)
	assert.Error(t, err)
}

func TestClient_BasePathIsKept(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/egrul/api/organizations/" {
			_, _ = w.Write([]byte(listBody))
			return
		}
		_, _ = w.Write([]byte(detailBody))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/egrul/", srv.Client(), nil)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "2128000002", false)
	require.NoError(t, err)
	_, err = c.Detail(context.Background(), "/api/organizations/42/")
	require.NoError(t, err)

	assert.Equal(t, []string{"/egrul/api/organizations/", "/egrul/api/organizations/42/"}, paths)
}
