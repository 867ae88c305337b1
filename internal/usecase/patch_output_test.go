package usecase_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i2y/pispi/internal/patcher"
	"github.com/i2y/pispi/internal/usecase"
)

func TestPatchOutputUseCase_Execute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	targets := patcher.Targets{ConfigFile: "/gen/core/OpenAPI.ts", ModelsDir: "/gen/models"}

	t.Run("Success - fixes recorded", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/gen/models/CompteTransfertIntraRequest.ts", []byte("export type CompteTransfertIntraRequest = ;\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, targets.ConfigFile, []byte("BASE: 'x',\nVERSION: 'y',\n"), 0o644))

		recorder := new(MockFixRecorder)
		recorder.On("RecordPatch", mock.Anything, mock.AnythingOfType("domain.PatchReport")).Once()

		uc := usecase.NewPatchOutputUseCase(patcher.New(fs, patcher.Options{}, logger), recorder, logger)
		report, err := uc.Execute(context.Background(), targets)
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalFixes)
		assert.True(t, report.Config.BaseReplaced)

		data, err := afero.ReadFile(fs, targets.ConfigFile)
		require.NoError(t, err)
		assert.Equal(t, "BASE: '"+patcher.DefaultBaseURL+"',\nVERSION: '"+patcher.DefaultVersion+"',\n", string(data))
		recorder.AssertExpectations(t)
	})

	t.Run("Success - nothing generated yet", func(t *testing.T) {
		uc := usecase.NewPatchOutputUseCase(patcher.New(afero.NewMemMapFs(), patcher.Options{}, logger), nil, logger)
		report, err := uc.Execute(context.Background(), targets)
		require.NoError(t, err)
		assert.True(t, report.Config.Skipped)
		assert.True(t, report.TypesSkipped)
		assert.Zero(t, report.TotalFixes)
	})
}
