package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/mail"
)

func TestRespondNotified(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		level   zapcore.Level
		logged  bool
	}{
		{"delivered", nil, fiber.StatusCreated, "", zapcore.InfoLevel, false},
		{"mail transport failure", &mail.SendEmailError{To: "ana@example.com", Err: errors.New("smtp down")}, fiber.StatusAccepted, notificationWarning, zapcore.WarnLevel, true},
		{"joined mail failure", errors.Join(&mail.SendEmailError{To: "ana@example.com", Err: errors.New("smtp down")}), fiber.StatusAccepted, notificationWarning, zapcore.WarnLevel, true},
		{"owner lookup timeout", fmt.Errorf("load owner: %w", context.DeadlineExceeded), fiber.StatusAccepted, notificationFailure, zapcore.ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			app := fiber.New()
			app.Post("/tickets", func(c *fiber.Ctx) error {
				return respondNotified(c, zap.New(core), fiber.StatusCreated, fiber.Map{"id": "t-1"}, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("POST", "/tickets", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var env dto.Envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.True(t, env.Success)
			assert.NotNil(t, env.Data, "committed data is always returned")
			assert.Equal(t, tt.message, env.Message)

			if !tt.logged {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level)
		})
	}
}
