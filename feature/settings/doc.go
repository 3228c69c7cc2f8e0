// Package settings exposes the running configuration over HTTP.
//
// Only read routes exist: the configuration cannot change after startup.
// The access token and other secrets are masked in every response.
package settings
