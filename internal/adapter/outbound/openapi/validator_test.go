package openapi_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i2y/pispi/internal/adapter/outbound/openapi"
)

func TestValidator_Validate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	v := openapi.NewValidator(logger)

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid normalized document",
			data: `{"openapi":"3.0.3","info":{"title":"PI-SPI","version":"1.0.0"},"paths":{"/webhooks":{"get":{"tags":["Default"],"operationId":"getWebhooks","responses":{"200":{"description":"ok"}}}}},"components":{},"tags":[]}`,
		},
		{
			name:    "operation without responses",
			data:    `{"openapi":"3.0.3","info":{"title":"PI-SPI","version":"1.0.0"},"paths":{"/webhooks":{"get":{}}},"components":{}}`,
			wantErr: true,
		},
		{
			name:    "not a document",
			data:    `[]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
