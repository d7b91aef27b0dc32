// Package function implements the GetSecret HTTP function.
//
// GET or POST /api/GetSecret?key=<name> returns {"key": ..., "secret": ...}
// on success. Every failure is reported as {"error": ..., "message": ...}
// with one of the status codes 400, 403, 404, 405, 424 or 500.
package function
