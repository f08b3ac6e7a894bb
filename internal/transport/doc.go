// Package transport moves frames between processes over websockets.
//
// Every websocket binary message carries exactly one frame in the
// frame.Marshal wire format.
//
//   - Subscriber dials an upstream topic URL and hands each decoded frame to a
//     callback, reconnecting after a fixed delay when the connection drops.
//   - Hub is an http.Handler that downstream consumers connect to. Publish
//     sends a frame to every connected consumer.
//
// Publishing is best effort: a consumer whose write fails is disconnected and
// the failure is reported to the caller, but nothing is retried or queued.
package transport
