package security

import "time"

// SecretReport describes one signing secret without revealing it.
type SecretReport struct {
	Length       int
	MeetsMinimum bool
}

// Report is the posture summary for one engine.
type Report struct {
	ProductionMode        bool
	SigningAlgorithm      string
	Audience              string
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	AccessExpEnforced     bool
	RefreshExpEnforced    bool
	AccessSecret          SecretReport
	RefreshSecret         SecretReport
	DistinctSecrets       bool
	RotationExtendsAccess bool
	MetricsEnabled        bool
	AuditEnabled          bool
	Warnings              []string
}

// ReportInput is the configuration as seen by BuildReport.
type ReportInput struct {
	ProductionMode      bool
	SigningAlgorithm    string
	Audience            string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	AccessValidateExp   bool
	RefreshValidateExp  bool
	AccessSecretLength  int
	RefreshSecretLength int
	SecretsEqual        bool
	MinSecretLength     int
	MetricsEnabled      bool
	AuditEnabled        bool
	Warnings            []string
}

// BuildReport summarises input.
func BuildReport(input ReportInput) Report {
	minLen := input.MinSecretLength
	if minLen <= 0 {
		minLen = 32
	}

	warnings := make([]string, len(input.Warnings))
	copy(warnings, input.Warnings)

	return Report{
		ProductionMode:     input.ProductionMode,
		SigningAlgorithm:   input.SigningAlgorithm,
		Audience:           input.Audience,
		AccessTTL:          input.AccessTTL,
		RefreshTTL:         input.RefreshTTL,
		AccessExpEnforced:  input.AccessValidateExp,
		RefreshExpEnforced: input.RefreshValidateExp,
		AccessSecret: SecretReport{
			Length:       input.AccessSecretLength,
			MeetsMinimum: input.AccessSecretLength >= minLen,
		},
		RefreshSecret: SecretReport{
			Length:       input.RefreshSecretLength,
			MeetsMinimum: input.RefreshSecretLength >= minLen,
		},
		DistinctSecrets:       !input.SecretsEqual,
		RotationExtendsAccess: input.AccessTTL <= input.RefreshTTL,
		MetricsEnabled:        input.MetricsEnabled,
		AuditEnabled:          input.AuditEnabled,
		Warnings:              warnings,
	}
}
