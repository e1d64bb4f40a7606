package extract

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/situacio-backend/internal/platform/httpx"
)

type FailureKind int

const (
	Unknown FailureKind = iota
	QuotaExhausted
	KeyMissing
)

func (k FailureKind) String() string {
	switch k {
	case QuotaExhausted:
		return "quota_exhausted"
	case KeyMissing:
		return "key_missing"
	default:
		return "unknown"
	}
}

// NeedsPaidKey reports the class where supplying another API key can help.
func (k FailureKind) NeedsPaidKey() bool {
	return k == QuotaExhausted || k == KeyMissing
}

// Failure is a classified extraction error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("extraction %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// quotaSignaller is implemented by provider errors that can tell billing quota apart
// from request-rate throttling.
type quotaSignaller interface {
	QuotaExhausted() bool
}

// Classify maps a provider error onto the failure taxonomy.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	var q quotaSignaller
	if errors.As(err, &q) && q.QuotaExhausted() {
		return &Failure{Kind: QuotaExhausted, Err: err}
	}
	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return &Failure{Kind: kindFor(gerr.Code, gerr.Status+" "+gerr.Message), Err: err}
	}
	var gptr *genai.APIError
	if errors.As(err, &gptr) && gptr != nil {
		return &Failure{Kind: kindFor(gptr.Code, gptr.Status+" "+gptr.Message), Err: err}
	}
	return &Failure{Kind: kindFor(httpx.StatusCode(err), err.Error()), Err: err}
}

func kindFor(status int, msg string) FailureKind {
	m := strings.ToLower(msg)
	switch {
	case status == http.StatusTooManyRequests,
		strings.Contains(m, "resource_exhausted"),
		strings.Contains(m, "quota"):
		return QuotaExhausted
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		strings.Contains(m, "api_key_invalid"),
		strings.Contains(m, "api key not valid"),
		strings.Contains(m, "missing api key"),
		strings.Contains(m, "permission_denied"):
		return KeyMissing
	default:
		return Unknown
	}
}
