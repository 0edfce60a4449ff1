package demo

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/signatory-io/jsonlines/jsonl"
	"github.com/signatory-io/jsonlines/logger"
)

// BrokenLine is the malformed line sent by the broken stream route
const BrokenLine = "{broken json}\n"

type Handler struct {
	conf       Config
	log        logger.Logger
	opts       []jsonl.Option
	cancelFlag atomic.Bool
	mux        *http.ServeMux
}

// NewHandler returns the HTTP routes of the demo feed:
//
//	POST /api/stream         chunked feed, see Produce
//	GET  /api/bulk           three records in a single body
//	POST /api/broken-stream  a valid record followed by a malformed line
//	GET  /api/cancel-flag    whether a feed has been cancelled by its client
func NewHandler(conf *Config, log logger.Logger, opts ...jsonl.Option) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := Handler{
		conf: *conf,
		log:  log,
		opts: append([]jsonl.Option{jsonl.WithLogger(log)}, opts...),
		mux:  http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /api/stream", h.serveStream)
	h.mux.HandleFunc("GET /api/bulk", h.serveBulk)
	h.mux.HandleFunc("POST /api/broken-stream", h.serveBrokenStream)
	h.mux.HandleFunc("GET /api/cancel-flag", h.serveCancelFlag)
	return &h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

// Cancelled reports whether any feed was cancelled by its consumer
func (h *Handler) Cancelled() bool { return h.cancelFlag.Load() }

func (h *Handler) serveStream(w http.ResponseWriter, r *http.Request) {
	log := h.log.With("remote", r.RemoteAddr)
	stream, writer := jsonl.NewSender(h.opts...)
	writer.OnCancel(func() {
		h.cancelFlag.Store(true)
		log.Info("Feed cancelled by client")
	})

	go func() {
		if err := Produce(context.Background(), writer, &h.conf); err != nil && !errors.Is(err, jsonl.ErrCancelled) {
			log.Error(err)
		}
	}()

	if err := jsonl.ServeStream(w, r, stream); err != nil && !errors.Is(err, context.Canceled) {
		log.Debugf("Feed: %v", err)
	}
}

func (h *Handler) serveBulk(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	enc := jsonl.NewEncoder(&buf, h.opts...)
	for _, rec := range []*Record{
		{LineNumber: 0, Kind: KindStart},
		{LineNumber: 1},
		{LineNumber: 2, Kind: KindEnd},
	} {
		if err := enc.Encode(rec); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", jsonl.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) serveBrokenStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", jsonl.MediaType)
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	if err := jsonl.NewEncoder(w, h.opts...).Encode(&Record{LineNumber: 0, Kind: KindStart}); err != nil {
		return
	}
	rc.Flush()

	select {
	case <-r.Context().Done():
		return
	case <-time.After(100 * time.Millisecond):
	}
	w.Write([]byte(BrokenLine))
	rc.Flush()
}

func (h *Handler) serveCancelFlag(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jsonl.NewEncoder(w, h.opts...).Encode(map[string]bool{"cancelFlag": h.cancelFlag.Load()})
}
