package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	goToken "github.com/MrEthical07/goToken"
)

const maxRotateBody = 8 << 10

// Rotator exchanges refresh tokens. *goToken.Engine satisfies it.
type Rotator interface {
	Rotate(refreshToken string) (string, goToken.Claims, error)
}

// RotateRequest is the body RotateHandler accepts.
type RotateRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RotateResponse is the body RotateHandler returns on success. ExpiresAt is
// Unix seconds.
type RotateResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// RotateHandler serves POST requests carrying a RotateRequest and answers
// with a fresh access token. The refresh token is not consumed.
func RotateHandler(engine Rotator, opts ...Option) http.Handler {
	o := buildOptions(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "use POST")
			return
		}
		if engine == nil {
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
			return
		}

		var req RotateRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRotateBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "body must be {\"refresh_token\": \"...\"}")
			return
		}
		req.RefreshToken = strings.TrimSpace(req.RefreshToken)
		if req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "refresh_token is required")
			return
		}

		token, claims, err := engine.Rotate(req.RefreshToken)
		if err != nil {
			logRejection(o.logger, r, err)
			WriteRejection(w, RejectionFor(err))
			return
		}

		writeJSON(w, http.StatusOK, RotateResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   claims.ExpiresAt,
		})
	})
}
