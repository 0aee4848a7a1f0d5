package binance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookTicker(t *testing.T) {
	data := json.RawMessage(`{"u":400900217,"s":"ARBUSDT","b":"0.52000000","B":"431.10000000","a":"0.53000000","A":"127.40000000"}`)

	bt, err := parseBookTicker(data)
	require.NoError(t, err)
	assert.Equal(t, "ARBUSDT", bt.Symbol)
	assert.Equal(t, 0.52, bt.BidPrice)
	assert.Equal(t, 431.1, bt.BidQty)
	assert.Equal(t, 0.53, bt.AskPrice)
	assert.Equal(t, 127.4, bt.AskQty)
}

func TestParseBookTickerRejectsMalformed(t *testing.T) {
	cases := []string{
		`{"u":1,"b":"0.52","B":"1","a":"0.53","A":"1"}`,            // missing symbol
		`{"u":1,"s":"ARBUSDT","b":"x","B":"1","a":"0.53","A":"1"}`, // bad price
		`not json`,
	}
	for _, raw := range cases {
		_, err := parseBookTicker(json.RawMessage(raw))
		assert.Error(t, err, "input %s", raw)
	}
}

func TestParseDepth(t *testing.T) {
	data := json.RawMessage(`{"lastUpdateId":160,"bids":[["0.52","431.1"],["0.51","12"]],"asks":[["0.53","127.4"]]}`)

	snap, err := parseDepth("arbusdt@depth10", data)
	require.NoError(t, err)
	assert.Equal(t, "ARBUSDT", snap.Symbol)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, 0.52, snap.Bids[0].Price)
	assert.Equal(t, 431.1, snap.Bids[0].Quantity)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, 0.53, snap.Asks[0].Price)
}

func TestParseDepthRejectsMalformed(t *testing.T) {
	_, err := parseDepth("arbusdt", json.RawMessage(`{"bids":[],"asks":[]}`))
	assert.Error(t, err, "stream without @ suffix")

	_, err = parseDepth("arbusdt@depth10", json.RawMessage(`{"bids":[["0.52"]],"asks":[]}`))
	assert.Error(t, err, "short level")
}

func TestDispatchRoutesByStream(t *testing.T) {
	client := NewWSClient("wss://example.invalid/stream", nil)

	var gotTicker *BookTicker
	var gotDepth *DepthSnapshot
	client.OnBookTicker(func(bt BookTicker) { gotTicker = &bt })
	client.OnDepth(func(ds DepthSnapshot) { gotDepth = &ds })

	client.dispatch([]byte(`{"stream":"arbusdt@bookTicker","data":{"u":1,"s":"ARBUSDT","b":"0.52","B":"1","a":"0.53","A":"2"}}`))
	require.NotNil(t, gotTicker)
	assert.Equal(t, "ARBUSDT", gotTicker.Symbol)

	client.dispatch([]byte(`{"stream":"arbusdt@depth10","data":{"lastUpdateId":1,"bids":[["0.52","1"]],"asks":[["0.53","2"]]}}`))
	require.NotNil(t, gotDepth)
	assert.Equal(t, "ARBUSDT", gotDepth.Symbol)

	// Unknown streams and garbage are dropped silently.
	client.dispatch([]byte(`{"stream":"arbusdt@trade","data":{}}`))
	client.dispatch([]byte(`garbage`))
}
