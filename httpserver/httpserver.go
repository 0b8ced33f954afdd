// Package httpserver contains middlewares for HTTP servers using the standard library.
// MiddlewareRecover turns panics in handlers into uncaught exception faults and responds with a JSON-formatted error.
package httpserver

const (
	HeaderContentType = "Content-Type"
	ContentTypeJson   = "application/json; charset=utf-8"
)
