package jsonl

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// MediaType is the content type of JSON Lines bodies
const MediaType = "application/jsonl"

// ServeStream sends s as a chunked JSON Lines response, flushing after every
// record. The stream is cancelled when the client goes away or a write
// fails, which triggers the Writer's OnCancel callback.
func ServeStream(w http.ResponseWriter, r *http.Request, s *Stream) error {
	stop := context.AfterFunc(r.Context(), func() { s.Close() })
	defer stop()

	w.Header().Set("Content-Type", MediaType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	_, err := s.WriteTo(flushWriter{w: w, rc: rc})
	if errors.Is(err, ErrCancelled) && r.Context().Err() != nil {
		return r.Context().Err()
	}
	return err
}

type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}

// HTTPError is returned when the server replies with a non 2xx status
type HTTPError struct {
	Code   int
	Header http.Header
	Body   []byte
}

func (h *HTTPError) Error() string {
	return http.StatusText(h.Code)
}

// Get requests url and returns a Receiver over the response body
func Get[T any](ctx context.Context, client *http.Client, url string, opts ...Option) (*Receiver[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return Do[T](client, req, opts...)
}

const maxErrorBody = 64 * 1024

// Do sends req and returns a Receiver over the response body. Cancelling the
// Receiver closes the body.
func Do[T any](client *http.Client, req *http.Request, opts ...Option) (*Receiver[T], error) {
	if client == nil {
		client = http.DefaultClient
	}
	req.Header.Set("Accept", MediaType)

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode/100 != 2 {
		defer res.Body.Close()
		body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		if err != nil {
			return nil, err
		}
		return nil, &HTTPError{
			Code:   res.StatusCode,
			Header: res.Header,
			Body:   body,
		}
	}
	return NewReceiver[T](res.Body, opts...), nil
}
