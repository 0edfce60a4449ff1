// Package jsonl implements an incremental codec for the JSON Lines wire format:
// independent JSON values, one per line, each terminated by a single line feed.
//
// The receive side wraps a byte source (for example an HTTP response body) and
// decodes records as soon as their line is complete, independently of how the
// transport chunks the bytes:
//
//	r := jsonl.NewReceiver[Item](res.Body)
//	for item, err := range r.All() {
//		if err != nil {
//			return err
//		}
//		...
//	}
//
// The send side pairs a byte stream with a writer. The stream can be consumed
// by anything accepting an io.Reader while the producer keeps writing:
//
//	stream, w := jsonl.NewSender()
//	w.OnCancel(stop)
//	go produce(w)
//	return jsonl.ServeStream(rw, req, stream)
package jsonl
