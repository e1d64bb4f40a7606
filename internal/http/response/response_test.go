package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/situacio-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{apierr.New(http.StatusConflict, "export_in_progress", errors.New("busy")), http.StatusConflict, "export_in_progress"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondAPIError(c, tc.err)
		if rec.Code != tc.wantStatus {
			t.Fatalf("status: want=%d got=%d", tc.wantStatus, rec.Code)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error.Code != tc.wantCode {
			t.Fatalf("code: want=%s got=%s", tc.wantCode, env.Error.Code)
		}
	}
}
