// Package middleware contains HTTP middleware for the Fiber applications.
//
// # Components
//
//   - Auth: implements API key validation to protect every endpoint, then
//     lets only superusers issue mutating requests. The caller names itself
//     in a header and must be a member of the configured set.
//   - RayID: generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//
// RayID must be registered first so every later log line carries the id.
package middleware
