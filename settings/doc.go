// Package settings loads engine configuration from a YAML or JSON-with-comments
// file and overlays GOTOKEN_* environment variables on top of it.
//
// Values keep human units: lifetimes are whole seconds and secrets are either
// plain strings or "base64:"-prefixed encodings. A single master secret may
// stand in for the access and refresh secrets, which are then derived from it.
package settings
