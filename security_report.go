package goToken

import (
	"bytes"

	"github.com/MrEthical07/goToken/internal/security"
)

// SecurityReport summarises an engine's security posture. It reports secret
// lengths, never secret bytes, and is safe to log or serve on an admin endpoint.
type SecurityReport = security.Report

// SecurityReport returns the posture summary for e.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	cc := e.config.Credentials
	return security.BuildReport(security.ReportInput{
		ProductionMode:      e.config.Security.ProductionMode,
		SigningAlgorithm:    e.jwtManager.Algorithm(),
		Audience:            cc.Audience,
		AccessTTL:           cc.AccessTTL,
		RefreshTTL:          cc.RefreshTTL,
		AccessValidateExp:   cc.AccessValidateExp,
		RefreshValidateExp:  cc.RefreshValidateExp,
		AccessSecretLength:  len(cc.AccessSecret),
		RefreshSecretLength: len(cc.RefreshSecret),
		SecretsEqual:        bytes.Equal(cc.AccessSecret, cc.RefreshSecret),
		MinSecretLength:     e.config.Security.MinSecretLength,
		MetricsEnabled:      e.config.Metrics.Enabled,
		AuditEnabled:        e.config.Audit.Enabled,
		Warnings:            e.config.Lint().Codes(),
	})
}
