// Package http implements the HTTP handlers for the auction search service.
// Handlers stay thin: they parse and validate the request, call a service,
// and render the response. All error responses are RFC 7807 problems.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                    ↓
//	HTTP Response ← render.JSON / ProblemDetails
//
// Success envelopes follow one shape:
//
//	{
//	    "status": "success",
//	    "data":   ...,
//	    "count":  3
//	}
//
// The export endpoint is the exception: it streams the generated file with a
// Content-Disposition header instead of a JSON body.
package http
