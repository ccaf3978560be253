// Package server exposes the batch service over HTTP.
//
// The API has a single endpoint:
//
//	POST /api/process-ips
//	{"ips": "8.8.8.8\n1.1.1.1", "use_default_output": true}
//
// The response is the JSON form of model.Response. CORS is permissive so
// that a browser front end on another origin can call it.
package server
