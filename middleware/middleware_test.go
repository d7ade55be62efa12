package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEngine(t *testing.T, audience string, clock goToken.Clock) *goToken.Engine {
	t.Helper()

	cc, err := goToken.NewCredentialConfig(
		[]byte("middleware-access-secret-0123456"),
		[]byte("middleware-refresh-secret-012345"),
		audience, time.Minute, time.Hour, true, true,
	)
	if err != nil {
		t.Fatalf("NewCredentialConfig: %v", err)
	}
	engine, err := goToken.New().WithCredentials(cc).WithClock(clock).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func subjectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goToken.SubjectFromContext(r.Context())))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		in    string
		token string
		ok    bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
		{"Bearerabc", "", false},
	}
	for _, tc := range tests {
		token, ok := BearerToken(tc.in)
		if token != tc.token || ok != tc.ok {
			t.Fatalf("BearerToken(%q) = (%q, %v), want (%q, %v)", tc.in, token, ok, tc.token, tc.ok)
		}
	}
}

func TestGuardAttachesClaims(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	engine := newTestEngine(t, "api", clock)
	token, err := engine.MintAccess("u1")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Guard(engine)(subjectHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "u1" {
		t.Fatalf("expected subject u1, got %q", rec.Body.String())
	}
}

func TestGuardRejectsMissingToken(t *testing.T) {
	engine := newTestEngine(t, "api", &fixedClock{now: time.Now()})

	rec := httptest.NewRecorder()
	Guard(engine)(subjectHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.ErrorCode != CodeMissingToken {
		t.Fatalf("expected %s, got %+v", CodeMissingToken, body)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected bare Bearer challenge, got %q", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestGuardExpiredSetsChallenge(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	engine := newTestEngine(t, "api", clock)
	token, err := engine.MintAccess("u1")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	clock.Advance(2 * time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Guard(engine)(subjectHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.ErrorCode != CodeExpired {
		t.Fatalf("expected %s, got %+v", CodeExpired, body)
	}
	want := `Bearer error="invalid_token", error_description="token expired"`
	if got := rec.Header().Get("WWW-Authenticate"); got != want {
		t.Fatalf("expected challenge %q, got %q", want, got)
	}
}

func TestGuardAudienceMismatchLogsWarn(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	issuer := newTestEngine(t, "app-a", clock)
	verifier := newTestEngine(t, "app-b", clock)
	token, err := issuer.MintAccess("u1")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	core, logs := observer.New(zap.InfoLevel)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Guard(verifier, WithLogger(zap.New(core)))(subjectHandler()).ServeHTTP(rec, req)

	if body := decodeError(t, rec); body.ErrorCode != CodeAudienceMismatch {
		t.Fatalf("expected %s, got %+v", CodeAudienceMismatch, body)
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
	if strings.Contains(entries[0].Message, token) {
		t.Fatal("log entry must not contain the token")
	}
	for _, f := range entries[0].Context {
		if f.String == token {
			t.Fatal("log field must not contain the token")
		}
	}
}

func TestGuardInvalidSignature(t *testing.T) {
	engine := newTestEngine(t, "api", &fixedClock{now: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	Guard(engine)(subjectHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.ErrorCode != CodeInvalidSignature {
		t.Fatalf("expected %s, got %+v", CodeInvalidSignature, body)
	}
	if rec.Header().Get("WWW-Authenticate") != "" {
		t.Fatal("expected no challenge for a forged token")
	}
}

func TestGuardCustomExtractor(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	engine := newTestEngine(t, "api", clock)
	token, _ := engine.MintAccess("cookie-user")

	fromCookie := func(r *http.Request) (string, bool) {
		c, err := r.Cookie("access")
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: token})
	rec := httptest.NewRecorder()
	Guard(engine, WithExtractor(fromCookie))(subjectHandler()).ServeHTTP(rec, req)

	if rec.Body.String() != "cookie-user" {
		t.Fatalf("expected cookie-user, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestOptionalPassesAnonymous(t *testing.T) {
	engine := newTestEngine(t, "api", &fixedClock{now: time.Now()})

	rec := httptest.NewRecorder()
	Optional(engine)(subjectHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "" {
		t.Fatalf("expected anonymous pass-through, got %d %q", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	Optional(engine)(subjectHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestRotateHandler(t *testing.T) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	engine := newTestEngine(t, "api", clock)
	pair, err := engine.MintPair("u1")
	if err != nil {
		t.Fatalf("MintPair: %v", err)
	}
	clock.Advance(5 * time.Minute)

	body := strings.NewReader(`{"refresh_token":"` + pair.RefreshToken + `"}`)
	rec := httptest.NewRecorder()
	RotateHandler(engine).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/token/refresh", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp RotateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresAt != clock.Now().Add(time.Minute).Unix() {
		t.Fatalf("unexpected response %+v", resp)
	}
	claims, err := engine.VerifyAccess(resp.AccessToken)
	if err != nil || claims.Subject != "u1" {
		t.Fatalf("rotated token did not verify: %v %+v", err, claims)
	}
}

func TestRotateHandlerRejects(t *testing.T) {
	engine := newTestEngine(t, "api", &fixedClock{now: time.Unix(1_700_000_000, 0)})
	access, _ := engine.MintAccess("u1")

	tests := []struct {
		name   string
		method string
		body   string
		status int
		code   string
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest, CodeBadRequest},
		{"unknown field", http.MethodPost, `{"token":"x"}`, http.StatusBadRequest, CodeBadRequest},
		{"empty token", http.MethodPost, `{"refresh_token":"  "}`, http.StatusBadRequest, CodeBadRequest},
		{"access token", http.MethodPost, `{"refresh_token":"` + access + `"}`, http.StatusUnauthorized, CodeInvalidSignature},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RotateHandler(engine).ServeHTTP(rec, httptest.NewRequest(tc.method, "/token/refresh", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if body := decodeError(t, rec); body.ErrorCode != tc.code {
				t.Fatalf("expected %s, got %+v", tc.code, body)
			}
		})
	}
}
