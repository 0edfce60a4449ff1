package demo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/signatory-io/jsonlines/conn"
	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, interval time.Duration) (*Handler, *httptest.Server) {
	conf := Config{Interval: interval, Count: 5}
	h := NewHandler(&conf, nil)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

func post[T any](t *testing.T, srv *httptest.Server, path string) (*jsonl.Receiver[T], *http.Response) {
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	return jsonl.NewReceiver[T](res.Body), res
}

func TestReceiveStream(t *testing.T) {
	_, srv := newTestServer(t, 10*time.Millisecond)
	r, res := post[Record](t, srv, "/api/stream")
	require.Equal(t, []string{"chunked"}, res.TransferEncoding)
	require.Equal(t, jsonl.MediaType, res.Header.Get("Content-Type"))

	var items []Record
	for item, err := range r.All() {
		require.NoError(t, err)
		require.NotEmpty(t, item.Timestamp)
		require.Equal(t, len(items), item.LineNumber)
		items = append(items, item)
	}
	require.Len(t, items, 7)
	require.Equal(t, KindStart, items[0].Kind)
	require.Equal(t, KindEnd, items[len(items)-1].Kind)
}

func TestReceiveBulk(t *testing.T) {
	_, srv := newTestServer(t, 10*time.Millisecond)
	r, err := jsonl.Get[Record](context.Background(), srv.Client(), srv.URL+"/api/bulk")
	require.NoError(t, err)

	var items []Record
	for item, err := range r.All() {
		require.NoError(t, err)
		require.Equal(t, len(items), item.LineNumber)
		items = append(items, item)
	}
	require.Len(t, items, 3)
	require.Equal(t, KindStart, items[0].Kind)
	require.Equal(t, KindEnd, items[2].Kind)

	res, err := srv.Client().Get(srv.URL + "/api/bulk")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Empty(t, res.TransferEncoding)
	require.Positive(t, res.ContentLength)
}

func TestReceiveBrokenStream(t *testing.T) {
	_, srv := newTestServer(t, 10*time.Millisecond)
	r, res := post[Record](t, srv, "/api/broken-stream")
	require.Equal(t, []string{"chunked"}, res.TransferEncoding)

	var items []Record
	var failure error
	for item, err := range r.All() {
		if err != nil {
			failure = err
			break
		}
		items = append(items, item)
	}
	require.Equal(t, []Record{{LineNumber: 0, Kind: KindStart}}, items)
	var derr *jsonl.DecodeError
	require.ErrorAs(t, failure, &derr)
	require.Equal(t, 2, derr.Line)
}

func TestCancelFlag(t *testing.T) {
	h, srv := newTestServer(t, time.Second)

	flag := func() bool {
		r, err := jsonl.Get[map[string]bool](context.Background(), srv.Client(), srv.URL+"/api/cancel-flag")
		require.NoError(t, err)
		v, err := r.Next()
		require.NoError(t, err)
		r.Cancel()
		return v["cancelFlag"]
	}
	require.False(t, flag())

	r, _ := post[Record](t, srv, "/api/stream")
	v, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, KindStart, v.Kind)
	require.NoError(t, r.Cancel())

	require.Eventually(t, func() bool { return flag() && h.Cancelled() }, 5*time.Second, 10*time.Millisecond)
}

func TestProduceCancelled(t *testing.T) {
	stream, w := jsonl.NewSender()
	conf := Config{Interval: time.Millisecond, Count: 1000}
	done := make(chan error)
	go func() { done <- Produce(context.Background(), w, &conf) }()

	buf := make([]byte, 256)
	_, err := stream.Read(buf)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	require.ErrorIs(t, <-done, jsonl.ErrCancelled)
}

func TestProduceContext(t *testing.T) {
	stream, w := jsonl.NewSender()
	conf := Config{Interval: time.Hour, Count: 1}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- Produce(ctx, w, &conf) }()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	_, err := io.ReadAll(stream)
	require.ErrorIs(t, err, context.Canceled)
}

func TestListen(t *testing.T) {
	conf := Config{Interval: time.Millisecond, Count: 2}

	t.Run("http", func(t *testing.T) {
		svc, err := Listen("http://127.0.0.1:0", &conf, nil)
		require.NoError(t, err)
		defer svc.Shutdown(context.Background())

		r, err := jsonl.Get[Record](context.Background(), nil, "http://"+svc.Addr().String()+"/api/bulk")
		require.NoError(t, err)
		var n int
		for _, err := range r.All() {
			require.NoError(t, err)
			n++
		}
		require.Equal(t, 3, n)
	})

	t.Run("tcp", func(t *testing.T) {
		svc, err := Listen("tcp://127.0.0.1:0", &conf, nil)
		require.NoError(t, err)

		c, err := conn.Dial[Record](context.Background(), "tcp", svc.Addr().String())
		require.NoError(t, err)
		defer c.Close()

		var items []Record
		for item, err := range c.Messages() {
			require.NoError(t, err)
			items = append(items, item)
		}
		require.Len(t, items, 4)
		require.Equal(t, KindStart, items[0].Kind)
		require.Equal(t, KindEnd, items[3].Kind)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, svc.Shutdown(ctx))
	})

	_, err := Listen("udp://127.0.0.1:0", &conf, nil)
	require.Error(t, err)
}
