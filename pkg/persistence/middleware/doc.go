// Package middleware wraps ports.StateStore implementations with cross-cutting
// persistence behavior such as encryption at rest.
package middleware
