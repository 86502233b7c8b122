// Package kernel holds the value objects shared by every aggregate of the
// delivery domain.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint: a validated WGS84 coordinate with great-circle distance
//
// Both are immutable and safe for concurrent use. Their zero values are invalid
// and are rejected by Validate.
package kernel
