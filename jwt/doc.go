// Package jwt seals and unseals access and refresh tokens with HMAC signing keys
// and checks them in a fixed order: signature, then audience, then expiry.
package jwt
