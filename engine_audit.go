package goToken

import (
	"context"
	"strconv"
)

const (
	auditEventAccessMinted  = "access_minted"
	auditEventPairMinted    = "pair_minted"
	auditEventVerifySuccess = "verify_success"
	auditEventVerifyFailure = "verify_failure"
	auditEventRotateSuccess = "rotate_success"
	auditEventRotateFailure = "rotate_failure"
)

func (e *Engine) emitAudit(event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(context.Background(), event)
}

func (e *Engine) emitSuccess(eventType string, claims Claims) {
	if e == nil || e.audit == nil {
		return
	}
	e.emitAudit(AuditEvent{
		EventType:  eventType,
		Subject:    claims.Subject,
		Credential: claims.Kind,
		TokenID:    claims.TokenID,
		Success:    true,
		Metadata: map[string]string{
			"expires_at": strconv.FormatInt(claims.ExpiresAt, 10),
		},
	})
}

func (e *Engine) emitPairSuccess(pair TokenPair) {
	if e == nil || e.audit == nil {
		return
	}
	e.emitAudit(AuditEvent{
		EventType: auditEventPairMinted,
		Subject:   pair.AccessClaims.Subject,
		TokenID:   pair.AccessClaims.TokenID,
		Success:   true,
		Metadata: map[string]string{
			"refresh_token_id":   pair.RefreshClaims.TokenID,
			"refresh_expires_at": strconv.FormatInt(pair.RefreshClaims.ExpiresAt, 10),
		},
	})
}

func (e *Engine) emitRotateSuccess(claims Claims, refreshID string) {
	if e == nil || e.audit == nil {
		return
	}
	e.emitAudit(AuditEvent{
		EventType:  auditEventRotateSuccess,
		Subject:    claims.Subject,
		Credential: claims.Kind,
		TokenID:    claims.TokenID,
		Success:    true,
		Metadata: map[string]string{
			"refresh_token_id": refreshID,
		},
	})
}

// Failed verifications carry no subject: an unverified token's claims are
// attacker-controlled and are never echoed into audit records.
func (e *Engine) emitFailure(eventType, subject string, credential TokenKind, err error) {
	if e == nil || e.audit == nil {
		return
	}
	e.emitAudit(AuditEvent{
		EventType:  eventType,
		Subject:    subject,
		Credential: credential,
		Success:    false,
		ErrorKind:  KindOf(err).String(),
	})
}
