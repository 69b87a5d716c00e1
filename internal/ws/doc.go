// Package ws pushes freshly computed trend reports to WebSocket subscribers.
//
// The hub holds one connection set. After every refresh cycle the runner
// calls Notify, which fans the current feed payload out to all clients; a
// client also receives the current feed immediately on connect so dashboards
// have data without waiting for the next refresh. Liveness is tracked with
// ping/pong frames; a client that cannot keep up with broadcasts is dropped.
package ws
