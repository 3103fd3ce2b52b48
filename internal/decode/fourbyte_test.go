package decode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourByteClient_LookupFunction_OrdersByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/signatures/", r.URL.Path)
		assert.Equal(t, "0x70a08231", r.URL.Query().Get("hex_signature"))
		_, _ = w.Write([]byte(`{"count":2,"results":[
			{"id":900,"text_signature":"passphrase_calculate_transfer(uint64,address)","hex_signature":"0x70a08231"},
			{"id":12,"text_signature":"balanceOf(address)","hex_signature":"0x70a08231"}
		]}`))
	}))
	defer srv.Close()

	c := NewFourByteClient(srv.URL, time.Second, testLogger())
	sigs, err := c.LookupFunction(context.Background(), "0x70a08231")
	require.NoError(t, err)
	assert.Equal(t, []string{"balanceOf(address)", "passphrase_calculate_transfer(uint64,address)"}, sigs)
}

func TestFourByteClient_LookupEvent_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/event-signatures/", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	defer srv.Close()

	c := NewFourByteClient(srv.URL+"/", time.Second, testLogger())
	sigs, err := c.LookupEvent(context.Background(), transferTopic)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestFourByteClient_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewFourByteClient(srv.URL, time.Second, testLogger())
	sigs, err := c.LookupFunction(context.Background(), "0x12345678")
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestFourByteClient_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewFourByteClient(srv.URL, time.Second, testLogger())
	for i := 0; i < 5; i++ {
		_, err := c.LookupFunction(context.Background(), "0x12345678")
		require.Error(t, err)
	}
	_, err := c.LookupFunction(context.Background(), "0x12345678")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, int32(5), hits.Load())
}

func TestFourByteClient_FeedsResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":1,"text_signature":"balanceOf(address)","hex_signature":"0x70a08231"}]}`))
	}))
	defer srv.Close()

	d := newTestDecoder(NewFourByteClient(srv.URL, time.Second, testLogger()))
	r := d.DecodeFunction(context.Background(), "0x70a08231"+word(addrA))
	assert.Equal(t, "balanceOf", r.Label())
}
