package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codeshell/internal/models"
)

func TestParseDeployResponse(t *testing.T) {
	res, err := parseDeployResponse(`{"success":true,"url":"https://demo.vercel.app"}`)
	require.NoError(t, err)
	assert.Equal(t, "https://demo.vercel.app", res.URL)

	_, err = parseDeployResponse(`{"success":false,"error":"Missing VERCEL_TOKEN"}`)
	assert.EqualError(t, err, "Missing VERCEL_TOKEN")

	_, err = parseDeployResponse(`{"success":true}`)
	assert.Error(t, err)

	_, err = parseDeployResponse(`<html>502</html>`)
	assert.Error(t, err)
}

func TestEdgeFunctionDeployer(t *testing.T) {
	var got DeployRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/functions/v1/deploy-to-vercel", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"url":"https://todo.vercel.app"}`))
	}))
	defer ts.Close()

	d := NewEdgeFunctionDeployer(ts.URL+"/", "service-key", "deploy-to-vercel")
	res, err := d.Deploy(context.Background(), DeployRequest{
		AppName: "todo",
		Files:   models.FileMap{"index.html": "<h1>Todo</h1>"},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://todo.vercel.app", res.URL)
	assert.Equal(t, "todo", got.AppName)
	assert.Equal(t, "<h1>Todo</h1>", got.Files["index.html"])
}

func TestEdgeFunctionDeployer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	d := NewEdgeFunctionDeployer(ts.URL+"/", "service-key", "deploy-to-vercel")
	_, err := d.Deploy(ctx, DeployRequest{AppName: "todo"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEdgeFunctionDeployer_ErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"function error message", http.StatusInternalServerError, `{"success":false,"error":"Missing VERCEL_TOKEN"}`, "Missing VERCEL_TOKEN"},
		{"gateway failure", http.StatusBadGateway, `{"success":true,"url":"https://x.vercel.app"}`, "returned status 502"},
		{"not json", http.StatusNotFound, `not found`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			d := NewEdgeFunctionDeployer(ts.URL, "service-key", "deploy-to-vercel")
			_, err := d.Deploy(context.Background(), DeployRequest{AppName: "todo"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
