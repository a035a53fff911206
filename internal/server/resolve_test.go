package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/zapbot/internal/nameservice"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

type stubResolver struct {
	ens  map[string]common.Address
	base map[string]common.Address
	err  error
}

func (s *stubResolver) lookup(table map[string]common.Address, name string) (common.Address, error) {
	if s.err != nil {
		return common.Address{}, s.err
	}
	if strings.Contains(name, "..") {
		return common.Address{}, fmt.Errorf("%w: empty label", nameservice.ErrInvalidName)
	}
	if table == nil {
		return common.Address{}, nameservice.ErrNotConfigured
	}
	addr, ok := table[name]
	if !ok {
		return common.Address{}, nameservice.ErrNotFound
	}
	return addr, nil
}

func (s *stubResolver) ResolveENS(_ context.Context, name string) (common.Address, error) {
	return s.lookup(s.ens, name)
}

func (s *stubResolver) ResolveBase(_ context.Context, name string) (common.Address, error) {
	return s.lookup(s.base, name)
}

func TestHandleResolve(t *testing.T) {
	alice := common.HexToAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")

	tests := []struct {
		name       string
		path       string
		body       string
		resolver   *stubResolver
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ens resolved",
			path:       "/v1/resolve/ens",
			body:       `{"name":" alice.eth "}`,
			resolver:   &stubResolver{ens: map[string]common.Address{"alice.eth": alice}},
			wantStatus: http.StatusOK,
			wantBody:   `{"name":"alice.eth","address":"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"}`,
		},
		{
			name:       "base resolved",
			path:       "/v1/resolve/base",
			body:       `{"name":"alice.base.eth"}`,
			resolver:   &stubResolver{base: map[string]common.Address{"alice.base.eth": alice}},
			wantStatus: http.StatusOK,
			wantBody:   `{"name":"alice.base.eth","address":"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"}`,
		},
		{
			name:       "missing name",
			path:       "/v1/resolve/ens",
			body:       `{}`,
			resolver:   &stubResolver{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"ENS name is required"}`,
		},
		{
			name:       "malformed body",
			path:       "/v1/resolve/ens",
			body:       `alice.eth`,
			resolver:   &stubResolver{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid name",
			path:       "/v1/resolve/ens",
			body:       `{"name":"alice..eth"}`,
			resolver:   &stubResolver{ens: map[string]common.Address{}},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid ENS name"}`,
		},
		{
			name:       "not found",
			path:       "/v1/resolve/ens",
			body:       `{"name":"nobody.eth"}`,
			resolver:   &stubResolver{ens: map[string]common.Address{}},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"ENS name not found"}`,
		},
		{
			name:       "base not configured",
			path:       "/v1/resolve/base",
			body:       `{"name":"alice.base.eth"}`,
			resolver:   &stubResolver{},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"Base name resolution is not configured"}`,
		},
		{
			name:       "rpc failure",
			path:       "/v1/resolve/ens",
			body:       `{"name":"alice.eth"}`,
			resolver:   &stubResolver{err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"failed to resolve ENS name"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(testConfig(), &stubHandler{}, logger.NewNopLogger(), nil, WithNameResolver(tt.resolver))
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestResolveRoutesRequireResolver(t *testing.T) {
	s := newTestServer(t, &stubHandler{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/resolve/ens", strings.NewReader(`{"name":"alice.eth"}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
