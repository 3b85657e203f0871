package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string, dst any) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return decodeJSON(httptest.NewRecorder(), req, dst)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantMsg   string
	}{
		{"malformed", `{"channelName":`, "body", "Invalid JSON body"},
		{"missing name", `{"category":"Technology"}`, "channelName", "channelName is required"},
		{"bad category", `{"channelName":"Tech","category":"Cooking"}`, "category", "Please select a valid category"},
		{"too long", `{"channelName":"Tech","description":"` + strings.Repeat("d", 1001) + `"}`, "description", "description cannot be more than 1000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req channelRequest
			err := decode(t, tt.body, &req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantField, appErr.Field)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestDecodeJSON_Valid(t *testing.T) {
	var req channelRequest
	require.NoError(t, decode(t, `{"channelName":"Tech","category":"Film & Animation"}`, &req))
	assert.Equal(t, "Tech", req.ChannelName)

	// Category is optional on create; empty skips the rule.
	var bare channelRequest
	require.NoError(t, decode(t, `{"channelName":"Tech"}`, &bare))

	// Optional pointer fields are only checked when present.
	var update videoUpdateRequest
	require.NoError(t, decode(t, `{"title":"new"}`, &update))
	require.Error(t, decode(t, `{"category":"Nope"}`, &update))
}

func TestDecodeJSON_RegisterRules(t *testing.T) {
	var req registerRequest
	err := decode(t, `{"username":"al","email":"al@example.com","password":"password123"}`, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 3")

	err = decode(t, `{"username":"alice","email":"nope","password":"password123"}`, &req)
	require.Error(t, err)
	assert.Equal(t, "Please provide a valid email", err.Error())
}

func TestPageRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/videos?page=3&limit=5", nil)
	assert.Equal(t, service.PageRequest{Page: 3, Limit: 5}, pageRequest(req))

	// Garbage becomes zero and the service substitutes its defaults.
	req = httptest.NewRequest(http.MethodGet, "/api/videos?page=abc", nil)
	assert.Equal(t, service.PageRequest{}, pageRequest(req))
}
