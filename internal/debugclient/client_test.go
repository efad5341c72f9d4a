package debugclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cideldill/cideldill/internal/breakpoint"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(server.URL, 1234, 1700000000.5, WithRetryTimeout(time.Second), WithRetrySleep(time.Millisecond))
	return client, server
}

func TestCheckConnection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, client.CheckConnection(context.Background()))
}

func TestRegisterFunction(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/functions", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "orders.charge", body["name"])
		w.WriteHeader(http.StatusCreated)
	})
	require.NoError(t, client.RegisterFunction(context.Background(), "orders.charge", "(amount: int) -> bool"))
}

func TestRecordCallStartContinue(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/call/start", r.URL.Path)
		var body callStartWire
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "orders.charge", body.MethodName)
		assert.Len(t, body.Args, 1)
		assert.NotEmpty(t, body.Args[0].CID)
		assert.NotEmpty(t, body.Args[0].Data, "first send of a CID must attach data")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(callStartResponseWire{CallID: "call-1", Action: "continue"})
	})

	start, err := client.RecordCallStart(context.Background(), "orders.charge", nil, []any{42}, nil, breakpoint.CallSite{}, "")
	require.NoError(t, err)
	assert.Equal(t, "call-1", start.CallID)
	assert.Equal(t, breakpoint.ActionContinue, start.Action)
}

func TestRecordCallStartOmitsDataForCachedObject(t *testing.T) {
	var secondArgsHadData bool
	calls := 0

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body callStartWire
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if calls == 2 {
			secondArgsHadData = len(body.Args[0].Data) > 0
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(callStartResponseWire{CallID: "call-1", Action: "continue"})
	})

	ctx := context.Background()
	_, err := client.RecordCallStart(ctx, "m", nil, []any{"same-value"}, nil, breakpoint.CallSite{}, "")
	require.NoError(t, err)
	_, err = client.RecordCallStart(ctx, "m", nil, []any{"same-value"}, nil, breakpoint.CallSite{}, "")
	require.NoError(t, err)

	assert.False(t, secondArgsHadData, "a CID already cached should not be resent")
}

func TestRecordCallStartRetriesOnceOnCIDNotFound(t *testing.T) {
	attempt := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempt++
		var body callStartWire
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if attempt == 1 {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":        "cid_not_found",
				"missing_cids": []string{body.Args[0].CID},
			})
			return
		}
		assert.NotEmpty(t, body.Args[0].Data, "retry must attach data for the missing CID")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(callStartResponseWire{CallID: "call-2", Action: "continue"})
	})

	// Prime the cache so the first attempt omits data, triggering the
	// server's cid_not_found response.
	cidOf(t, client, "pre-cached")

	start, err := client.RecordCallStart(context.Background(), "m", nil, []any{"pre-cached"}, nil, breakpoint.CallSite{}, "")
	require.NoError(t, err)
	assert.Equal(t, "call-2", start.CallID)
	assert.Equal(t, 2, attempt)
}

func cidOf(t *testing.T, c *Client, v any) string {
	t.Helper()
	item, err := c.serializeItem(v, nil)
	require.NoError(t, err)
	return item.CID
}

func TestRecordCallCompleteSuccessNoPause(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/call/complete", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(callCompleteResponseWire{Status: "ok"})
	})

	post, err := client.RecordCallComplete(context.Background(), "call-1", breakpoint.StatusSuccess, "result", nil)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestRecordCallCompleteSuccessTriggersPause(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(callCompleteResponseWire{
			Action: "poll", PollURL: "/api/poll/pause-1", PollIntervalMS: 10, TimeoutMS: 100,
		})
	})

	post, err := client.RecordCallComplete(context.Background(), "call-1", breakpoint.StatusSuccess, "result", nil)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, breakpoint.ActionPoll, post.Action)
	assert.Equal(t, "/api/poll/pause-1", post.PollURL)
}

func TestRecordCallCompleteException(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body callCompleteWire
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, breakpoint.StatusException, body.Status)
		assert.Equal(t, "boom", body.ExceptionMessage)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(callCompleteResponseWire{Status: "ok"})
	})

	_, err := client.RecordCallComplete(context.Background(), "call-1", breakpoint.StatusException, nil, assertError("boom"))
	require.NoError(t, err)
}

type assertError string

func (e assertError) Error() string { return string(e) }

func TestPollReturnsImmediatelyWhenReady(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/poll/pause-1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ready",
			"action": breakpoint.ResumeAction{Action: breakpoint.ActionContinue},
		})
	})

	action, err := client.Poll(context.Background(), "pause-1", "", 10, 1000)
	require.NoError(t, err)
	assert.Equal(t, breakpoint.ActionContinue, action.Action)
}

func TestPollRetriesUntilReady(t *testing.T) {
	n := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n++
		w.WriteHeader(http.StatusOK)
		if n < 3 {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "waiting"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ready",
			"action": breakpoint.ResumeAction{Action: breakpoint.ActionSkip},
		})
	})

	action, err := client.Poll(context.Background(), "pause-1", "", 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, breakpoint.ActionSkip, action.Action)
	assert.Equal(t, 3, n)
}

func TestPollTimesOut(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "waiting"})
	})

	_, err := client.Poll(context.Background(), "pause-1", "", 1, 5)
	require.ErrorIs(t, err, ErrPollTimeout)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	client := New("http://unused", 1, 1.0)
	item, err := client.serializeItem(map[string]any{"k": "v"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, item.Data)

	v, err := client.deserializeItem(item)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, v)
}

func TestDeserializeItemWithoutDataOrCacheFails(t *testing.T) {
	client := New("http://unused", 1, 1.0)
	_, err := client.deserializeItem(breakpoint.SerializedItem{CID: "deadbeef"})
	require.ErrorIs(t, err, ErrObjectNotCached)
}
