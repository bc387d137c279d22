// Package middleware provides HTTP middleware for the rendition server.
//
// It includes:
//   - Request IDs carried in X-Request-ID
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
package middleware
