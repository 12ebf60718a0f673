package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestortareas/internal/server/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		EmailJSServiceID:            "service_abc",
		EmailJSPublicKey:            "pub_key",
		EmailJSPrivateKey:           "priv_key",
		EmailJSTemplateRecovery:     "tmpl_recovery",
		EmailJSTemplateConfirmation: "tmpl_changed",
		FrontendURL:                 "https://app.example.com",
	}

	c := NewClient(cfg)
	c.endpoint = srv.URL
	return c
}

func TestSendPasswordRecovery(t *testing.T) {
	var got sendRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := c.SendPasswordRecovery(context.Background(), "ana@x.com", "ana", "deadbeef")
	require.NoError(t, err)

	assert.Equal(t, "service_abc", got.ServiceID)
	assert.Equal(t, "tmpl_recovery", got.TemplateID)
	assert.Equal(t, "pub_key", got.UserID)
	assert.Equal(t, "priv_key", got.AccessToken)
	assert.Equal(t, "ana@x.com", got.TemplateParams["to_email"])
	assert.Equal(t, "ana", got.TemplateParams["to_name"])
	assert.Equal(t, "https://app.example.com/recuperar-contrasena/deadbeef", got.TemplateParams["recovery_url"])
}

func TestSendPasswordChanged(t *testing.T) {
	var got sendRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := c.SendPasswordChanged(context.Background(), "ana@x.com", "ana")
	require.NoError(t, err)

	assert.Equal(t, "tmpl_changed", got.TemplateID)
	assert.Equal(t, "ana@x.com", got.TemplateParams["to_email"])
	assert.NotContains(t, got.TemplateParams, "recovery_url")
}

func TestSend_RelayError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid template", http.StatusBadRequest)
	})

	err := c.SendPasswordChanged(context.Background(), "ana@x.com", "ana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
