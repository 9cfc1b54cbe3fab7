package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishilink/agrimarket-crawler/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

// gtxResponse mimics the wire format of the public translate endpoint for
// a single translated segment.
func gtxResponse(translated, original string) string {
	return fmt.Sprintf(`[[["%s","%s",null,null,10]],null,"ne"]`, translated, original)
}

func TestTranslateEmptyInput(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil, zap.NewNop())
	if got := c.Translate(context.Background(), "", "en"); got != "" {
		t.Fatalf("Translate(\"\") = %q; want empty", got)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no upstream calls for empty input, got %d", calls.Load())
	}
}

func TestTranslateSingleChunk(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client") != "gtx" || r.URL.Query().Get("tl") != "en" {
			t.Errorf("unexpected query params: %s", r.URL.RawQuery)
		}
		if q := r.URL.Query().Get("q"); q != "धान" {
			t.Errorf("unexpected q param: %q", q)
		}
		fmt.Fprint(w, gtxResponse("paddy", "धान"))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, ChunkSize: 500}, nil, zap.NewNop())
	got := c.Translate(context.Background(), "धान", "en")
	require.Equal(t, "paddy", got)
}

func TestTranslateChunksInOrder(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query().Get("q")
		fmt.Fprint(w, gtxResponse("T:"+q, q))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, ChunkSize: 4}, nil, zap.NewNop())
	got := c.Translate(context.Background(), "abcdefghij", "en")

	require.Equal(t, int64(3), calls.Load(), "10 runes at chunk size 4 must issue 3 calls")
	require.Equal(t, "T:abcd T:efgh T:ij", got)
}

func TestTranslateFailedChunkKeepsOriginal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "efgh" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, gtxResponse("T:"+q, q))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, ChunkSize: 4}, nil, zap.NewNop())
	got := c.Translate(context.Background(), "abcdefghij", "en")

	require.Equal(t, "T:abcd efgh T:ij", got, "failing chunk must fall back to its source text")
}

func TestTranslateMalformedResponseKeepsOriginal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"the expected shape"}`)
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil, zap.NewNop())
	require.Equal(t, "source", c.Translate(context.Background(), "source", "en"))
}

func TestTranslateTimeoutKeepsOriginal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, gtxResponse("late", "x"))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond}, nil, zap.NewNop())
	require.Equal(t, "x", c.Translate(context.Background(), "x", "en"))
}

func TestSplitChunksMultibyte(t *testing.T) {
	t.Parallel()

	chunks := splitChunks(strings.Repeat("क", 7), 3)
	require.Len(t, chunks, 3)
	require.Equal(t, "ककक", chunks[0])
	require.Equal(t, "क", chunks[2])
}
