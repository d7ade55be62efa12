package goToken

import "context"

type claimsContextKey struct{}

// WithClaims attaches verified claims to ctx. Transport guards call it after
// VerifyAccess succeeds.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the claims attached by WithClaims.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	if ctx == nil {
		return Claims{}, false
	}

	claims, ok := ctx.Value(claimsContextKey{}).(Claims)
	return claims, ok
}

// SubjectFromContext returns the verified subject, or "" when ctx carries no claims.
func SubjectFromContext(ctx context.Context) string {
	claims, _ := ClaimsFromContext(ctx)
	return claims.Subject
}
