package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/roznoapp/rozno/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseRecord(delta string) string {
	payload, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]string{"content": delta}},
		},
	})
	return "data: " + string(payload) + "\n\n"
}

// serveChunks writes the body in the given pieces, flushing between each, so
// the client sees arbitrary transport chunk boundaries.
func serveChunks(t *testing.T, chunks [][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !assert.True(t, ok) {
			return
		}
		for _, chunk := range chunks {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			flusher.Flush()
		}
	}))
}

func TestStreamChatDeliversDeltasInOrder(t *testing.T) {
	body := sseRecord("سل") + sseRecord("ام") + sseRecord(" دن") + sseRecord("یا") + "data: [DONE]\n\n"
	server := serveChunks(t, [][]byte{[]byte(body)})
	defer server.Close()

	svc := NewAIGatewayService(server.URL, "key", "test-model")
	var deltas []string
	usage, err := svc.StreamChat(context.Background(), "s1", []ChatMessage{{Role: "user", Content: "سلام"}}, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Nil(t, usage)
	assert.Equal(t, []string{"سل", "ام", " دن", "یا"}, deltas)
	assert.Equal(t, "سلام دنیا", strings.Join(deltas, ""))
}

func TestStreamChatChunkBoundariesDoNotChangeOutput(t *testing.T) {
	body := []byte(sseRecord("سل") + sseRecord("ام") + sseRecord(" دن") + sseRecord("یا") + "data: [DONE]\n\n")

	// Split points chosen to land mid-record and mid multi-byte rune: the
	// Persian payload is multi-byte UTF-8, so any odd offset inside it cuts
	// a character in half at the transport level.
	splitAts := [][]int{
		{1},
		{len(body) / 2},
		{13, 14, 15},
		{7, 21, 22, 23, 60},
	}

	for _, points := range splitAts {
		var chunks [][]byte
		prev := 0
		for _, p := range points {
			if p <= prev || p >= len(body) {
				continue
			}
			chunks = append(chunks, body[prev:p])
			prev = p
		}
		chunks = append(chunks, body[prev:])

		server := serveChunks(t, chunks)
		svc := NewAIGatewayService(server.URL, "key", "test-model")

		var deltas []string
		_, err := svc.StreamChat(context.Background(), "s1", nil, func(d string) {
			deltas = append(deltas, d)
		})
		server.Close()

		require.NoError(t, err, "split %v", points)
		assert.Equal(t, []string{"سل", "ام", " دن", "یا"}, deltas, "split %v", points)
	}
}

func TestStreamChatSkipsMalformedRecords(t *testing.T) {
	body := sseRecord("a") +
		"data: {not json}\n\n" +
		"data: {\"choices\":[]}\n\n" +
		"data: {\"choices\":[{\"delta\":{}}]}\n\n" +
		sseRecord("b") +
		"data: [DONE]\n\n"
	server := serveChunks(t, [][]byte{[]byte(body)})
	defer server.Close()

	svc := NewAIGatewayService(server.URL, "key", "test-model")
	var deltas []string
	_, err := svc.StreamChat(context.Background(), "s1", nil, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, deltas)
}

func TestStreamChatCapturesUsage(t *testing.T) {
	body := sseRecord("hi") +
		"data: {\"choices\":[],\"usage\":{\"prompt_tokens\":12,\"completion_tokens\":34}}\n\n" +
		"data: [DONE]\n\n"
	server := serveChunks(t, [][]byte{[]byte(body)})
	defer server.Close()

	svc := NewAIGatewayService(server.URL, "key", "test-model")
	usage, err := svc.StreamChat(context.Background(), "s1", nil, func(string) {})
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Equal(t, 12, usage.PromptTokens)
	assert.Equal(t, 34, usage.CompletionTokens)
}

func TestStreamChatStatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		wantErr error
	}{
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusPaymentRequired, domain.ErrQuotaExhausted},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		svc := NewAIGatewayService(server.URL, "key", "test-model")
		_, err := svc.StreamChat(context.Background(), "s1", nil, func(string) {
			t.Fatal("no delta expected")
		})
		server.Close()
		assert.ErrorIs(t, err, tc.wantErr)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()
	svc := NewAIGatewayService(server.URL, "key", "test-model")
	_, err := svc.StreamChat(context.Background(), "s1", nil, func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestStreamChatTransportFailureMidStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseRecord("par"))
		w.(http.Flusher).Flush()

		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		conn.Close() // abort without [DONE] or clean shutdown
	}))
	defer server.Close()

	svc := NewAIGatewayService(server.URL, "key", "test-model")
	var deltas []string
	_, err := svc.StreamChat(context.Background(), "s1", nil, func(d string) {
		deltas = append(deltas, d)
	})
	require.Error(t, err)
	// Deltas received before the failure were still delivered in order.
	assert.Equal(t, []string{"par"}, deltas)
}

func TestStreamChatRequestShape(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	svc := NewAIGatewayService(server.URL+"/", "key", "test-model")
	_, err := svc.StreamChat(context.Background(), "session-9", []ChatMessage{
		{Role: "system", Content: "prompt"},
		{Role: "user", Content: "سلام"},
	}, func(string) {})
	require.NoError(t, err)

	assert.Equal(t, "test-model", got.Model)
	assert.True(t, got.Stream)
	assert.Equal(t, "session-9", got.SessionID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "سلام", got.Messages[1].Content)
	require.NotNil(t, got.StreamOptions)
	assert.True(t, got.StreamOptions.IncludeUsage)
}
