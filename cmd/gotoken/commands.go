package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/secret"
	"github.com/MrEthical07/goToken/settings"
)

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: gotoken %s [flags]\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &exitError{code: exitUsage, err: err}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openEngine loads settings from path and the environment and builds an
// engine from them. The caller closes the engine and syncs the logger.
func openEngine(path string, stderr io.Writer) (*goToken.Engine, *zap.Logger, error) {
	s, err := settings.Read(path)
	if err != nil {
		return nil, nil, &exitError{code: exitConfiguration, err: err}
	}
	logger, err := newLogger(s.Log, stderr)
	if err != nil {
		return nil, nil, &exitError{code: exitConfiguration, err: err}
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, nil, &exitError{code: exitConfiguration, err: err}
	}

	b := goToken.New().WithConfig(cfg).WithLogger(logger)
	if s.Audit.Enabled {
		b = b.WithAuditSink(goToken.NewZapSink(logger))
	}
	engine, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("engine ready",
		zap.String("audience", engine.Audience()),
		zap.String("config", path),
	)
	return engine, logger, nil
}

func closeEngine(engine *goToken.Engine, logger *zap.Logger) {
	engine.Close()
	_ = logger.Sync()
}

type keygenOutput struct {
	AccessSecret  string `json:"access_secret,omitempty"`
	RefreshSecret string `json:"refresh_secret,omitempty"`
	MasterSecret  string `json:"master_secret,omitempty"`
}

func runKeygen(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("keygen", stderr)
	length := fs.IntP("length", "n", secret.DefaultLength, "secret length in bytes")
	master := fs.Bool("master", false, "emit one master secret instead of an access/refresh pair")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *length < 32 {
		return usageError("--length must be at least 32, got %d", *length)
	}

	var out keygenOutput
	if *master {
		b, err := secret.Generate(*length)
		if err != nil {
			return err
		}
		out.MasterSecret = "base64:" + secret.Encode(b)
		return writeJSON(stdout, out)
	}

	access, err := secret.Generate(*length)
	if err != nil {
		return err
	}
	refresh, err := secret.Generate(*length)
	if err != nil {
		return err
	}
	out.AccessSecret = "base64:" + secret.Encode(access)
	out.RefreshSecret = "base64:" + secret.Encode(refresh)
	return writeJSON(stdout, out)
}

type tokenOutput struct {
	AccessToken string         `json:"access_token"`
	Claims      goToken.Claims `json:"claims"`
}

type pairOutput struct {
	AccessToken   string         `json:"access_token"`
	RefreshToken  string         `json:"refresh_token"`
	AccessClaims  goToken.Claims `json:"access_claims"`
	RefreshClaims goToken.Claims `json:"refresh_claims"`
}

func runMint(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("mint", stderr)
	configPath := fs.StringP("config", "c", "", "settings file (.yaml, .yml, .json, .jsonc)")
	subject := fs.StringP("subject", "s", "", "subject to mint for")
	pair := fs.Bool("pair", false, "mint an access and refresh pair")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	engine, logger, err := openEngine(*configPath, stderr)
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	if *pair {
		p, err := engine.MintPair(*subject)
		if err != nil {
			return err
		}
		return writeJSON(stdout, pairOutput{
			AccessToken:   p.AccessToken,
			RefreshToken:  p.RefreshToken,
			AccessClaims:  p.AccessClaims,
			RefreshClaims: p.RefreshClaims,
		})
	}

	tok, claims, err := engine.MintAccessWithClaims(*subject)
	if err != nil {
		return err
	}
	return writeJSON(stdout, tokenOutput{AccessToken: tok, Claims: claims})
}

type verifyOutput struct {
	Valid     bool            `json:"valid"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Claims    *goToken.Claims `json:"claims,omitempty"`
}

func tokenArg(fs *pflag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", usageError("expected exactly one token argument, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

func runVerify(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("verify", stderr)
	configPath := fs.StringP("config", "c", "", "settings file (.yaml, .yml, .json, .jsonc)")
	kind := fs.StringP("kind", "k", string(goToken.TokenAccess), "credential kind: access or refresh")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	token, err := tokenArg(fs)
	if err != nil {
		return err
	}

	var verify func(*goToken.Engine, string) (goToken.Claims, error)
	switch goToken.TokenKind(*kind) {
	case goToken.TokenAccess:
		verify = (*goToken.Engine).VerifyAccess
	case goToken.TokenRefresh:
		verify = (*goToken.Engine).VerifyRefresh
	default:
		return usageError("--kind must be access or refresh, got %q", *kind)
	}

	engine, logger, err := openEngine(*configPath, stderr)
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	claims, err := verify(engine, token)
	if err != nil {
		if werr := writeJSON(stdout, verifyOutput{ErrorKind: goToken.KindOf(err).String()}); werr != nil {
			return werr
		}
		return err
	}
	return writeJSON(stdout, verifyOutput{Valid: true, Claims: &claims})
}

func runRotate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("rotate", stderr)
	configPath := fs.StringP("config", "c", "", "settings file (.yaml, .yml, .json, .jsonc)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	token, err := tokenArg(fs)
	if err != nil {
		return err
	}

	engine, logger, err := openEngine(*configPath, stderr)
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	tok, claims, err := engine.Rotate(token)
	if err != nil {
		return err
	}
	return writeJSON(stdout, tokenOutput{AccessToken: tok, Claims: claims})
}

type secretView struct {
	Length       int  `json:"length"`
	MeetsMinimum bool `json:"meets_minimum"`
}

type reportOutput struct {
	ProductionMode        bool       `json:"production_mode"`
	SigningAlgorithm      string     `json:"signing_algorithm"`
	Audience              string     `json:"audience"`
	AccessTTLSeconds      int64      `json:"access_ttl_seconds"`
	RefreshTTLSeconds     int64      `json:"refresh_ttl_seconds"`
	AccessExpEnforced     bool       `json:"access_exp_enforced"`
	RefreshExpEnforced    bool       `json:"refresh_exp_enforced"`
	AccessSecret          secretView `json:"access_secret"`
	RefreshSecret         secretView `json:"refresh_secret"`
	DistinctSecrets       bool       `json:"distinct_secrets"`
	RotationExtendsAccess bool       `json:"rotation_extends_access"`
	MetricsEnabled        bool       `json:"metrics_enabled"`
	AuditEnabled          bool       `json:"audit_enabled"`
	Warnings              []string   `json:"warnings"`
}

func runReport(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("report", stderr)
	configPath := fs.StringP("config", "c", "", "settings file (.yaml, .yml, .json, .jsonc)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	engine, logger, err := openEngine(*configPath, stderr)
	if err != nil {
		return err
	}
	defer closeEngine(engine, logger)

	r := engine.SecurityReport()
	return writeJSON(stdout, reportOutput{
		ProductionMode:        r.ProductionMode,
		SigningAlgorithm:      r.SigningAlgorithm,
		Audience:              r.Audience,
		AccessTTLSeconds:      int64(r.AccessTTL / time.Second),
		RefreshTTLSeconds:     int64(r.RefreshTTL / time.Second),
		AccessExpEnforced:     r.AccessExpEnforced,
		RefreshExpEnforced:    r.RefreshExpEnforced,
		AccessSecret:          secretView{Length: r.AccessSecret.Length, MeetsMinimum: r.AccessSecret.MeetsMinimum},
		RefreshSecret:         secretView{Length: r.RefreshSecret.Length, MeetsMinimum: r.RefreshSecret.MeetsMinimum},
		DistinctSecrets:       r.DistinctSecrets,
		RotationExtendsAccess: r.RotationExtendsAccess,
		MetricsEnabled:        r.MetricsEnabled,
		AuditEnabled:          r.AuditEnabled,
		Warnings:              r.Warnings,
	})
}
