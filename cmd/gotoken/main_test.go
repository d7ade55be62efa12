package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/secret"
)

const settingsTemplate = `
credentials:
  audience: %AUD%
  access_secret: access-secret-access-secret-access-1
  refresh_secret: refresh-secret-refresh-secret-refresh-1
  access_ttl_seconds: 60
  refresh_ttl_seconds: 3600
log:
  level: warn
`

func writeSettings(t *testing.T, audience string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gotoken.yaml")
	body := strings.ReplaceAll(settingsTemplate, "%AUD%", audience)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, &stdout, &stderr
}

func decode[T any](t *testing.T, buf *bytes.Buffer) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode output %q: %v", buf.String(), err)
	}
	return out
}

func TestRunUsage(t *testing.T) {
	if code, _, _ := runCLI(t); code != exitUsage {
		t.Fatalf("expected exitUsage with no args, got %d", code)
	}
	if code, _, stderr := runCLI(t, "launch"); code != exitUsage || !strings.Contains(stderr.String(), "unknown command") {
		t.Fatalf("expected unknown command usage error, got %d %q", code, stderr.String())
	}
	code, stdout, _ := runCLI(t, "help")
	if code != exitOK || !strings.Contains(stdout.String(), "rotate") {
		t.Fatalf("expected help listing commands, got %d %q", code, stdout.String())
	}
	if code, _, _ := runCLI(t, "mint", "--bogus"); code != exitUsage {
		t.Fatalf("expected exitUsage for unknown flag, got %d", code)
	}
	if code, _, _ := runCLI(t, "mint", "--help"); code != exitOK {
		t.Fatalf("expected exitOK for --help, got %d", code)
	}
}

func TestKeygen(t *testing.T) {
	code, stdout, _ := runCLI(t, "keygen", "--length", "48")
	if code != exitOK {
		t.Fatalf("keygen exit %d", code)
	}
	out := decode[keygenOutput](t, stdout)
	access, err := secret.Decode(out.AccessSecret)
	if err != nil || len(access) != 48 {
		t.Fatalf("bad access secret %q: %v", out.AccessSecret, err)
	}
	refresh, err := secret.Decode(out.RefreshSecret)
	if err != nil || len(refresh) != 48 {
		t.Fatalf("bad refresh secret %q: %v", out.RefreshSecret, err)
	}
	if bytes.Equal(access, refresh) {
		t.Fatalf("keygen returned identical secrets")
	}

	code, stdout, _ = runCLI(t, "keygen", "--master")
	if code != exitOK {
		t.Fatalf("keygen --master exit %d", code)
	}
	if out := decode[keygenOutput](t, stdout); out.MasterSecret == "" || out.AccessSecret != "" {
		t.Fatalf("unexpected master output: %+v", out)
	}

	if code, _, _ := runCLI(t, "keygen", "-n", "8"); code != exitUsage {
		t.Fatalf("expected exitUsage for short length, got %d", code)
	}
}

func TestMintVerifyRoundTrip(t *testing.T) {
	cfg := writeSettings(t, "billing")

	code, stdout, stderr := runCLI(t, "mint", "-c", cfg, "--subject", "user-1")
	if code != exitOK {
		t.Fatalf("mint exit %d: %s", code, stderr.String())
	}
	minted := decode[tokenOutput](t, stdout)
	if minted.Claims.Subject != "user-1" || minted.Claims.Audience != "billing" {
		t.Fatalf("unexpected minted claims: %+v", minted.Claims)
	}
	if minted.Claims.ExpiresAt-minted.Claims.IssuedAt != 60 {
		t.Fatalf("expected 60s lifetime, got %d", minted.Claims.ExpiresAt-minted.Claims.IssuedAt)
	}

	code, stdout, stderr = runCLI(t, "verify", "-c", cfg, minted.AccessToken)
	if code != exitOK {
		t.Fatalf("verify exit %d: %s", code, stderr.String())
	}
	verified := decode[verifyOutput](t, stdout)
	if !verified.Valid || verified.Claims == nil || *verified.Claims != minted.Claims {
		t.Fatalf("unexpected verify output: %+v", verified)
	}

	code, stdout, _ = runCLI(t, "verify", "-c", cfg, "--kind", "refresh", minted.AccessToken)
	if code != exitInvalidSignature {
		t.Fatalf("expected exitInvalidSignature for access token as refresh, got %d", code)
	}
	if out := decode[verifyOutput](t, stdout); out.Valid || out.ErrorKind != "invalid_signature" {
		t.Fatalf("unexpected failure output: %+v", out)
	}
}

func TestVerifyExitCodes(t *testing.T) {
	billing := writeSettings(t, "billing")
	orders := writeSettings(t, "orders")

	code, stdout, _ := runCLI(t, "mint", "-c", billing, "-s", "user-1")
	if code != exitOK {
		t.Fatalf("mint exit %d", code)
	}
	tok := decode[tokenOutput](t, stdout).AccessToken

	if code, _, _ := runCLI(t, "verify", "-c", orders, tok); code != exitAudienceMismatch {
		t.Fatalf("expected exitAudienceMismatch, got %d", code)
	}
	if code, _, _ := runCLI(t, "verify", "-c", billing, "not.a.token"); code != exitInvalidSignature {
		t.Fatalf("expected exitInvalidSignature, got %d", code)
	}
	if code, _, _ := runCLI(t, "verify", "-c", billing); code != exitUsage {
		t.Fatalf("expected exitUsage without token, got %d", code)
	}
	if code, _, _ := runCLI(t, "verify", "-c", billing, "--kind", "id", tok); code != exitUsage {
		t.Fatalf("expected exitUsage for bad kind, got %d", code)
	}
	if code, _, _ := runCLI(t, "mint", "-c", billing); code != exitInvalidSubject {
		t.Fatalf("expected exitInvalidSubject, got %d", code)
	}
}

func TestRotate(t *testing.T) {
	cfg := writeSettings(t, "billing")

	code, stdout, _ := runCLI(t, "mint", "-c", cfg, "-s", "user-1", "--pair")
	if code != exitOK {
		t.Fatalf("mint --pair exit %d", code)
	}
	pair := decode[pairOutput](t, stdout)
	if pair.RefreshClaims.Kind != goToken.TokenRefresh || pair.AccessClaims.IssuedAt != pair.RefreshClaims.IssuedAt {
		t.Fatalf("unexpected pair claims: %+v %+v", pair.AccessClaims, pair.RefreshClaims)
	}

	code, stdout, stderr := runCLI(t, "rotate", "-c", cfg, pair.RefreshToken)
	if code != exitOK {
		t.Fatalf("rotate exit %d: %s", code, stderr.String())
	}
	rotated := decode[tokenOutput](t, stdout)
	if rotated.Claims.Subject != "user-1" || rotated.Claims.Kind != goToken.TokenAccess {
		t.Fatalf("unexpected rotated claims: %+v", rotated.Claims)
	}
	if code, _, _ := runCLI(t, "verify", "-c", cfg, rotated.AccessToken); code != exitOK {
		t.Fatalf("rotated token does not verify: %d", code)
	}

	if code, _, _ := runCLI(t, "rotate", "-c", cfg, pair.AccessToken); code != exitInvalidSignature {
		t.Fatalf("expected exitInvalidSignature rotating an access token, got %d", code)
	}
}

func TestReport(t *testing.T) {
	cfg := writeSettings(t, "billing")

	code, stdout, stderr := runCLI(t, "report", "-c", cfg)
	if code != exitOK {
		t.Fatalf("report exit %d: %s", code, stderr.String())
	}
	out := decode[reportOutput](t, stdout)
	if out.Audience != "billing" || out.AccessTTLSeconds != 60 || out.RefreshTTLSeconds != 3600 {
		t.Fatalf("unexpected report: %+v", out)
	}
	if !out.DistinctSecrets || !out.RotationExtendsAccess || out.SigningAlgorithm != "HS256" {
		t.Fatalf("unexpected report posture: %+v", out)
	}
	if strings.Contains(stdout.String(), "access-secret-access") {
		t.Fatalf("report leaked a secret: %s", stdout.String())
	}
}

func TestConfigurationFailures(t *testing.T) {
	if code, _, _ := runCLI(t, "report", "-c", writeSettings(t, "")); code != exitConfiguration {
		t.Fatalf("expected exitConfiguration for empty audience, got %d", code)
	}
	if code, _, _ := runCLI(t, "report", "-c", filepath.Join(t.TempDir(), "missing.yaml")); code != exitConfiguration {
		t.Fatalf("expected exitConfiguration for missing file, got %d", code)
	}

	cfg := writeSettings(t, "billing")
	t.Setenv("GOTOKEN_LOG_LEVEL", "verbose")
	if code, _, _ := runCLI(t, "report", "-c", cfg); code != exitConfiguration {
		t.Fatalf("expected exitConfiguration for bad log level, got %d", code)
	}
}

func TestLintWarningsAreLogged(t *testing.T) {
	cfg := writeSettings(t, "billing")
	t.Setenv("GOTOKEN_ACCESS_VALIDATE_EXP", "false")

	code, _, stderr := runCLI(t, "report", "-c", cfg)
	if code != exitOK {
		t.Fatalf("report exit %d", code)
	}
	if !strings.Contains(stderr.String(), "access_exp_validation_disabled") {
		t.Fatalf("expected lint warning on stderr, got %q", stderr.String())
	}
}

func TestBench(t *testing.T) {
	cfg := writeSettings(t, "billing")

	code, stdout, stderr := runCLI(t, "bench", "-c", cfg, "--pairs", "4", "--ops", "40", "--concurrency", "4")
	if code != exitOK {
		t.Fatalf("bench exit %d: %s", code, stderr.String())
	}
	out := decode[benchOutput](t, stdout)
	if out.Verify.Ops != 40 || out.Verify.Failures != 0 {
		t.Fatalf("unexpected verify stats: %+v", out.Verify)
	}
	if out.Rotate.Ops != 40 || out.Rotate.Failures != 0 {
		t.Fatalf("unexpected rotate stats: %+v", out.Rotate)
	}
}

func TestPercentile(t *testing.T) {
	samples := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	durations := make([]time.Duration, len(samples))
	for i, s := range samples {
		durations[i] = time.Duration(s)
	}
	if got := percentile(durations, 50); got != 5 {
		t.Fatalf("p50 = %v", got)
	}
	if got := percentile(durations, 100); got != 10 {
		t.Fatalf("p100 = %v", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty p50 = %v", got)
	}
}
