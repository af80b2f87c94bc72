package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dormdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readingBody struct {
	RoomID string          `json:"room_id" binding:"required,uuid"`
	Month  string          `json:"month" binding:"required,month"`
	Water  decimal.Decimal `json:"water" binding:"gte=0"`
	Email  string          `json:"email" binding:"omitempty,email"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/readings", func(c *gin.Context) {
		var req readingBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantCode    string
		wantDetails map[string]string
	}{
		{
			name:       "valid",
			body:       `{"room_id":"6f1c1c1e-0b7b-4a57-9a55-0c7a4f1b2d3e","month":"2025-01","water":"12.5"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "field errors use json names",
			body:       `{"room_id":"101","month":"Jan 2025","water":"-1","email":"nope"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantDetails: map[string]string{
				"room_id": "Invalid UUID format",
				"month":   "Must be a month in YYYY-MM format",
				"water":   "Must be greater than or equal to 0",
				"email":   "Invalid email format",
			},
		},
		{
			name:        "required",
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    dto.ErrCodeValidation,
			wantDetails: map[string]string{"room_id": "This field is required", "month": "This field is required"},
		},
		{
			name:       "malformed json",
			body:       `{"room_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name:       "invalid token",
			body:       `{"room_id": nope}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
		{
			name:       "wrong json type",
			body:       `{"room_id": 5}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/readings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode == "" {
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)

			got := map[string]string{}
			for _, d := range resp.Error.Details {
				got[d.Field] = d.Message
			}
			for field, msg := range tt.wantDetails {
				assert.Equal(t, msg, got[field], field)
			}
		})
	}
}
