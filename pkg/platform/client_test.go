package platform_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/serverless/platform-client/pkg/accesskeys"
	"github.com/serverless/platform-client/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDoer struct {
	err error
}

func (f *failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func testServer(t *testing.T) *httptest.Server {
	router := chi.NewRouter()
	router.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	})
	router.Post("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	})
	router.Post("/garbage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestPostJSON(t *testing.T) {
	server := testServer(t)
	client := platform.NewClient(platform.Endpoints{}, accesskeys.Static("key"))
	ctx := context.Background()

	t.Run("successful round trip", func(t *testing.T) {
		out := map[string]any{}
		err := client.PostJSON(ctx, "test", server.URL+"/echo", map[string]string{
			"Authorization": platform.Bearer("key"),
		}, []byte(`{"hello":"world"}`), &out)
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"hello": "world"}, out)
	})

	t.Run("non-2xx responses are errors", func(t *testing.T) {
		var out any
		err := client.PostJSON(ctx, "test", server.URL+"/forbidden", nil, []byte(`{}`), &out)
		respErr := &platform.ResponseError{}
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, http.StatusForbidden, respErr.StatusCode)
		assert.JSONEq(t, `{"message":"nope"}`, string(respErr.Body))
		assert.EqualError(t, err, `platform responded with 403 Forbidden: {"message":"nope"}`)
	})

	t.Run("unparseable response", func(t *testing.T) {
		var out any
		err := client.PostJSON(ctx, "test", server.URL+"/garbage", nil, []byte(`{}`), &out)
		assert.ErrorContains(t, err, "decode response from")
	})

	t.Run("transport failure is propagated", func(t *testing.T) {
		broken := errors.New("connection refused")
		failing := platform.NewClient(platform.Endpoints{}, nil)
		failing.HTTP = &failingDoer{err: broken}
		var out any
		err := failing.PostJSON(ctx, "test", server.URL+"/echo", nil, []byte(`{}`), &out)
		assert.ErrorIs(t, err, broken)
	})
}

func TestBearer(t *testing.T) {
	assert.Equal(t, "bearer access-key", platform.Bearer("access-key"))
}

func TestDefaultEndpoints(t *testing.T) {
	prod, err := platform.DefaultEndpoints("")
	assert.NoError(t, err)
	assert.Equal(t, "https://api.serverless.com/core", prod.APIURL)
	assert.Equal(t, "https://dashboard.serverless.com", prod.DashboardURL)

	dev, err := platform.DefaultEndpoints(platform.StageDev)
	assert.NoError(t, err)
	assert.Equal(t, "https://dashboard.serverless-dev.com", dev.DashboardURL)

	_, err = platform.DefaultEndpoints("staging")
	assert.EqualError(t, err, "unknown platform stage 'staging'; expected 'prod' or 'dev'")
}

func TestEndpointsOverride(t *testing.T) {
	prod, _ := platform.DefaultEndpoints(platform.StageProd)
	e := prod.Override(platform.Endpoints{APIURL: "http://localhost:8080/core"})
	assert.Equal(t, "http://localhost:8080/core", e.APIURL)
	assert.Equal(t, prod.DashboardURL, e.DashboardURL)
	assert.Equal(t, prod.LogDestinationURL, e.LogDestinationURL)
}
