package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	goToken "github.com/MrEthical07/goToken"
)

// ErrorBody is the JSON body of every rejection.
type ErrorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Error codes written into ErrorBody.ErrorCode.
const (
	CodeMissingToken     = "missing_token"
	CodeInvalidSignature = "invalid_signature"
	CodeAudienceMismatch = "audience_mismatch"
	CodeExpired          = "token_expired"
	CodeBadRequest       = "bad_request"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// Rejection is the transport view of an engine error.
type Rejection struct {
	Status int
	Body   ErrorBody
	// Challenge is the WWW-Authenticate value, empty when none is sent.
	Challenge string
}

// RejectionFor maps an engine error onto a status, body and challenge.
// Only expiry carries a challenge, since it is the one failure a client can
// fix by refreshing.
func RejectionFor(err error) Rejection {
	switch goToken.KindOf(err) {
	case goToken.KindExpired:
		return Rejection{
			Status:    http.StatusUnauthorized,
			Body:      ErrorBody{ErrorCode: CodeExpired, Message: "token expired"},
			Challenge: `Bearer error="invalid_token", error_description="token expired"`,
		}
	case goToken.KindAudienceMismatch:
		return Rejection{
			Status: http.StatusUnauthorized,
			Body:   ErrorBody{ErrorCode: CodeAudienceMismatch, Message: "token not issued for this service"},
		}
	case goToken.KindInvalidSignature:
		return Rejection{
			Status: http.StatusUnauthorized,
			Body:   ErrorBody{ErrorCode: CodeInvalidSignature, Message: "invalid token"},
		}
	}
	if errors.Is(err, ErrMissingToken) {
		return Rejection{
			Status:    http.StatusUnauthorized,
			Body:      ErrorBody{ErrorCode: CodeMissingToken, Message: "missing bearer token"},
			Challenge: "Bearer",
		}
	}
	return Rejection{
		Status: http.StatusInternalServerError,
		Body:   ErrorBody{ErrorCode: CodeInternal, Message: "internal error"},
	}
}

// WriteRejection writes rej as a JSON response.
func WriteRejection(w http.ResponseWriter, rej Rejection) {
	if rej.Challenge != "" {
		w.Header().Set("WWW-Authenticate", rej.Challenge)
	}
	writeJSON(w, rej.Status, rej.Body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{ErrorCode: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
