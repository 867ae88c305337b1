package main

import (
	"github.com/spf13/cobra"

	"github.com/i2y/pispi/internal/patcher"
	"github.com/i2y/pispi/internal/usecase"
)

func newPatchCmd(a *app) *cobra.Command {
	var (
		modelsDir  string
		coreConfig string
		baseURL    string
		apiVersion string
		extension  string
	)

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Repair the generated client after code generation",
		Long: "Pins BASE and VERSION in the generated core configuration and restores type " +
			"bodies the generator emitted empty. Missing files are skipped; the command only " +
			"fails when interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("models-dir") {
				cfg.ModelsDir = modelsDir
			}
			if flags.Changed("core-config") {
				cfg.CoreConfigFile = coreConfig
			}
			if flags.Changed("base-url") {
				cfg.TargetBaseURL = baseURL
			}
			if flags.Changed("api-version") {
				cfg.TargetVersion = apiVersion
			}
			if flags.Changed("extension") {
				cfg.TypeExtension = extension
			}

			p := patcher.New(a.fs, cfg.PatchOptions(), a.logger)
			uc := usecase.NewPatchOutputUseCase(p, a.recorder, a.logger)
			_, err := uc.Execute(cmd.Context(), cfg.PatchTargets())
			return err
		},
	}

	cmd.Flags().StringVar(&modelsDir, "models-dir", "", "Directory of generated model files")
	cmd.Flags().StringVar(&coreConfig, "core-config", "", "Generated file holding the BASE and VERSION assignments")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "BASE value to pin")
	cmd.Flags().StringVar(&apiVersion, "api-version", "", "VERSION value to pin")
	cmd.Flags().StringVar(&extension, "extension", "", "Extension of generated model files")
	return cmd
}
