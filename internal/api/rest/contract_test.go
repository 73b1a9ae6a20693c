package rest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/config"
)

const contractSpecPath = "../../../api/openapi.yaml"

// contractRequest builds a request whose host matches the contract's server
// URL, which is what the contract router keys on.
func contractRequest(method, path, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://localhost:5000"+path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func newContractServer(t *testing.T, carriers []config.CarrierConfig) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Carriers = carriers

	srv, err := NewServer(&cfg, testLogger())
	require.NoError(t, err)
	return srv
}

func TestContractVerifyEndpoint(t *testing.T) {
	validator, err := NewContractValidator(contractSpecPath)
	require.NoError(t, err)

	body := `{"number":"+15005550100","time":1756080000000}`

	tests := []struct {
		name       string
		carriers   []config.CarrierConfig
		wantStatus int
		wantField  string
	}{
		{
			name:       "issued token",
			carriers:   []config.CarrierConfig{{Name: "always_on", ChanceSMS: 100, ChanceVoice: 100}},
			wantStatus: http.StatusOK,
			wantField:  `"token"`,
		},
		{
			name:       "exhausted cascade",
			carriers:   []config.CarrierConfig{{Name: "black_hole", ChanceSMS: 0, ChanceVoice: 0}},
			wantStatus: http.StatusOK,
			wantField:  `"error":"verification unsuccessful"`,
		},
		{
			name:       "empty pool",
			carriers:   nil,
			wantStatus: http.StatusServiceUnavailable,
			wantField:  `"error":"no carriers found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newContractServer(t, tt.carriers)

			require.NoError(t, validator.ValidateRequest(contractRequest(http.MethodPost, "/", body)))

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, contractRequest(http.MethodPost, "/", body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantField)

			err := validator.ValidateResponse(
				contractRequest(http.MethodPost, "/", body),
				rec.Code, rec.Header(), rec.Body.Bytes(),
			)
			assert.NoError(t, err)
		})
	}
}

func TestContractRejectsMalformedVerifyRequest(t *testing.T) {
	validator, err := NewContractValidator(contractSpecPath)
	require.NoError(t, err)

	// The handler and the published contract must refuse the same shapes.
	tests := []string{
		`{"number":"+15005550100"}`,
		`{"time":1756080000000}`,
		`{"number":42,"time":1756080000000}`,
	}

	srv := newContractServer(t, []config.CarrierConfig{{Name: "always_on", ChanceSMS: 100, ChanceVoice: 100}})

	for i, body := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			assert.Error(t, validator.ValidateRequest(contractRequest(http.MethodPost, "/", body)))

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, contractRequest(http.MethodPost, "/", body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestContractRankEndpoint(t *testing.T) {
	validator, err := NewContractValidator(contractSpecPath)
	require.NoError(t, err)

	srv := newContractServer(t, []config.CarrierConfig{
		{Name: "fast_lane", ChanceSMS: 100, ChanceVoice: 100},
		{Name: "black_hole", ChanceSMS: 0, ChanceVoice: 0},
	})

	// Round-robin splits the seed attempts evenly between the two carriers.
	for i := 0; i < 4; i++ {
		body := fmt.Sprintf(`{"number":"+1500555010%d","time":1756080000000}`, i)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, contractRequest(http.MethodPost, "/", body))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, contractRequest(http.MethodGet, "/rank", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[["fast_lane",1],["black_hole",5]]`, rec.Body.String())

	err = validator.ValidateResponse(
		contractRequest(http.MethodGet, "/rank", ""),
		rec.Code, rec.Header(), rec.Body.Bytes(),
	)
	assert.NoError(t, err)
}

func TestContractHealthEndpoint(t *testing.T) {
	validator, err := NewContractValidator(contractSpecPath)
	require.NoError(t, err)

	srv := newContractServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, contractRequest(http.MethodGet, "/health", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	err = validator.ValidateResponse(
		contractRequest(http.MethodGet, "/health", ""),
		rec.Code, rec.Header(), rec.Body.Bytes(),
	)
	assert.NoError(t, err)
}
