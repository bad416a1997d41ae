// Package http exposes wizard sessions over a JSON REST API with
// Server-Sent Events streaming state diffs.
//
// Routes:
//
//	GET    /health
//	GET    /flows
//	GET    /flows/{flow}
//	GET    /flows/{flow}/graph
//	POST   /sessions                  {"flow": "send-money"}
//	GET    /sessions
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/fields      {"fields": {"amount": 500}}
//	POST   /sessions/{id}/advance
//	POST   /sessions/{id}/retreat
//	POST   /sessions/{id}/jump        {"index": 0}
//	POST   /sessions/{id}/reset
//	POST   /sessions/{id}/cancel
//	GET    /sessions/{id}/events      (text/event-stream)
//	GET    /preferences
//	PUT    /preferences
//	GET    /preferences/events        (text/event-stream)
//
// Sensitive payload values (MPIN, OTP, passwords) never leave the server.
package http
