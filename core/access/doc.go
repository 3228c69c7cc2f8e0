// Package access defines who counts as a superuser and holds the CI token.
//
// Privilege is plain membership in a fixed set of identifiers; there is no
// authentication here. The Set type is built once and only read afterwards,
// so it can be shared between goroutines freely.
package access
