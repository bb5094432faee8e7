package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payum-server/payum_server/internal/config"
	"github.com/payum-server/payum_server/internal/logging"
)

func TestNewServesHealthInDevelopment(t *testing.T) {
	srv, err := New(config.Config{AppName: "test", AppEnv: "development"}, nil, nil, logging.Discard())
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNewRejectsMissingStoresInProduction(t *testing.T) {
	_, err := New(config.Config{AppEnv: "production"}, nil, nil, logging.Discard())
	assert.Error(t, err)
}
