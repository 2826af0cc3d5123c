package api

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apimocks "github.com/goran-ethernal/StarkIndexor/internal/api/mocks"
	"github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *config.APIConfig
		validate func(t *testing.T, server *Server)
	}{
		{
			name: "basic config",
			config: &config.APIConfig{
				Enabled:       true,
				ListenAddress: "localhost:8080",
				ReadTimeout:   common.NewDuration(5 * time.Second),
				WriteTimeout:  common.NewDuration(10 * time.Second),
				IdleTimeout:   common.NewDuration(60 * time.Second),
			},
			validate: func(t *testing.T, server *Server) {
				t.Helper()

				require.NotNil(t, server.indexers)
				require.NotNil(t, server.handler)
				require.Equal(t, "localhost:8080", server.server.Addr)
				require.Equal(t, 5*time.Second, server.server.ReadTimeout)
				require.Equal(t, 10*time.Second, server.server.WriteTimeout)
				require.Equal(t, 60*time.Second, server.server.IdleTimeout)
			},
		},
		{
			name: "page and address caps reach the handler",
			config: &config.APIConfig{
				Enabled:              true,
				ListenAddress:        ":9090",
				MaxPageSize:          25,
				MaxTransferAddresses: 7,
			},
			validate: func(t *testing.T, server *Server) {
				t.Helper()

				require.Equal(t, uint64(25), server.handler.maxPageSize)
				require.Equal(t, 7, server.handler.maxAddresses)
			},
		},
		{
			name: "unset caps fall back to one",
			config: &config.APIConfig{
				ListenAddress: ":9090",
			},
			validate: func(t *testing.T, server *Server) {
				t.Helper()

				require.Equal(t, uint64(1), server.handler.maxPageSize)
				require.Equal(t, 1, server.handler.maxAddresses)
				require.NotNil(t, server.handler.validator)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := NewServer(tt.config, apimocks.NewIndexerProvider(t), nil, logger.NewNopLogger())
			require.NotNil(t, server.Handler())
			tt.validate(t, server)
		})
	}
}

func TestServer_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cors       config.CORSConfig
		wantOrigin string
	}{
		{
			name:       "enabled",
			cors:       config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://wallet.example"}},
			wantOrigin: "https://wallet.example",
		},
		{
			name: "disabled",
			cors: config.CORSConfig{Enabled: false, AllowedOrigins: []string{"https://wallet.example"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := apimocks.NewIndexerProvider(t)
			provider.EXPECT().Keys().Return([]string{testKey})

			cfg := &config.APIConfig{Enabled: true, ListenAddress: ":0", MaxPageSize: 10, CORS: tt.cors}
			server := NewServer(cfg, provider, nil, logger.NewNopLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/indexers", nil)
			req.Header.Set("Origin", "https://wallet.example")
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	t.Parallel()

	server := NewServer(&config.APIConfig{ListenAddress: ":0"}, apimocks.NewIndexerProvider(t), nil,
		logger.NewNopLogger())

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/indexers", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Start_Disabled(t *testing.T) {
	t.Parallel()

	server := NewServer(&config.APIConfig{Enabled: false, ListenAddress: ":0"}, apimocks.NewIndexerProvider(t),
		nil, logger.NewNopLogger())

	done := make(chan error, 1)
	go func() {
		done <- server.Start(context.Background())
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start() did not return when server is disabled")
	}
}

func TestServer_Start_GracefulShutdown(t *testing.T) {
	t.Parallel()

	// reserve a free port so the test can reach the server
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	provider := apimocks.NewIndexerProvider(t)
	provider.EXPECT().Keys().Return([]string{testKey}).Maybe()

	cfg := &config.APIConfig{
		Enabled:       true,
		ListenAddress: addr,
		ReadTimeout:   common.NewDuration(5 * time.Second),
		WriteTimeout:  common.NewDuration(5 * time.Second),
		IdleTimeout:   common.NewDuration(60 * time.Second),
	}
	server := NewServer(cfg, provider, nil, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/v1/indexers") //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownCtxTimeout + 5*time.Second):
		t.Fatal("server did not shut down gracefully")
	}
}
