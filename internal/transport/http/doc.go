// Package http implements HTTP request handlers for the MAC web service.
// It provides a thin layer between HTTP transport and the scoring services,
// keeping handlers focused solely on HTTP concerns.
//
// Handlers parse and validate the request, delegate to the service layer,
// and transform service errors into RFC 7807 problem responses. No scoring
// logic lives here.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Engine
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
package http
