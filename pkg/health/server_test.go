package health

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedrun-hq/lzbridger/pkg/bridge"
	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/circuitbreaker"
	"github.com/speedrun-hq/lzbridger/pkg/models"
)

type blockReader struct {
	block uint64
	err   error
}

func (b blockReader) BlockNumber(context.Context) (uint64, error) {
	return b.block, b.err
}

func descriptor(t *testing.T, name string) chains.Descriptor {
	t.Helper()
	d, err := chains.DefaultRegistry().Resolve(name)
	require.NoError(t, err)
	return d
}

func newTestServer(t *testing.T, apiKey string) (*Server, *circuitbreaker.CircuitBreaker, *Tracker) {
	t.Helper()
	breaker := circuitbreaker.NewCircuitBreaker("polygon", true, 1, time.Minute, time.Hour, nil)
	tracker := NewTracker()
	server := NewServer("0", apiKey, []Chain{
		{Descriptor: descriptor(t, "polygon"), Client: blockReader{block: 42}, Breaker: breaker},
		{Descriptor: descriptor(t, "bsc"), Client: blockReader{err: errors.New("down")}},
	}, tracker, nil)
	return server, breaker, tracker
}

func serve(server *Server, method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	server, _, _ := newTestServer(t, "")

	rec := serve(server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = serve(server, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	notReady := NewServer("0", "", []Chain{{Descriptor: descriptor(t, "arbitrum")}}, nil, nil)
	rec = serve(notReady, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "arbitrum")
}

func TestStatus(t *testing.T) {
	server, breaker, tracker := newTestServer(t, "")
	breaker.RecordFailure()

	wallet := common.HexToAddress("0x0000000000000000000000000000000000000001")
	tracker.Handle(bridge.Event{Kind: bridge.EventStart, RunID: "run-1", Wallet: wallet, Source: "polygon", Destination: "bsc", Stage: models.StageScheduled})
	tracker.Handle(bridge.Event{Kind: bridge.EventBalanceSufficient, RunID: "run-1", Stage: models.StageWaitingForFunds, Balance: big.NewInt(40000)})

	rec := serve(server, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Contains(t, body.Chains, "polygon")
	assert.Equal(t, "open", body.Chains["polygon"].Circuit)
	require.NotNil(t, body.Chains["polygon"].LatestBlock)
	assert.Equal(t, uint64(42), *body.Chains["polygon"].LatestBlock)
	assert.Equal(t, uint16(109), body.Chains["polygon"].LzChainID)
	assert.Equal(t, "closed", body.Chains["bsc"].Circuit)
	assert.Nil(t, body.Chains["bsc"].LatestBlock)
	assert.NotContains(t, rec.Body.String(), "rpc")

	require.Len(t, body.Workflows, 1)
	assert.Equal(t, "40000", body.Workflows[0].Balance)
	assert.Equal(t, 1, body.Active)
}

func TestCircuitReset(t *testing.T) {
	server, breaker, _ := newTestServer(t, "")
	breaker.RecordFailure()
	require.True(t, breaker.IsOpen())

	rec := serve(server, http.MethodGet, "/circuit/reset?chain=polygon", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(server, http.MethodPost, "/circuit/reset", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(server, http.MethodPost, "/circuit/reset?chain=bsc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(server, http.MethodPost, "/circuit/reset?chain=POLYGON", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, breaker.IsOpen())
}

func TestMetricsAuth(t *testing.T) {
	server, _, _ := newTestServer(t, "secret")

	rec := serve(server, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(server, http.MethodGet, "/metrics", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(server, http.MethodGet, "/metrics", "secret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	// health stays open
	rec = serve(server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
