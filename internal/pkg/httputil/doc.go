// Package httputil provides shared HTTP response helpers for API handlers.
//
// Handlers use these instead of writing raw http.ResponseWriter calls so
// every endpoint emits the same JSON error envelope.
package httputil
