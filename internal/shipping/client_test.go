package shipping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCities(t *testing.T) {
	var got rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"Ref":"c1","Description":"Київ","AreaDescription":"Київська"}],"errors":[]}`))
	}))
	defer srv.Close()

	cities, err := NewClient(srv.URL, "key-1").Cities(context.Background(), "Київ")
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, City{Ref: "c1", Description: "Київ", AreaDescription: "Київська"}, cities[0])

	assert.Equal(t, "key-1", got.APIKey)
	assert.Equal(t, "Address", got.ModelName)
	assert.Equal(t, "getCities", got.CalledMethod)
	assert.Equal(t, "Київ", got.MethodProperties["FindByString"])
	assert.Equal(t, "20", got.MethodProperties["Limit"])
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("broken") != "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"data":[],"errors":["API key expired"]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k").Warehouses(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key expired")

	_, err = NewClient(srv.URL+"?broken=1", "k").Warehouses(context.Background(), "c1")
	assert.Error(t, err)
}
