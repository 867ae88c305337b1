package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/i2y/pispi/internal/adapter/outbound/github"
	"github.com/i2y/pispi/internal/adapter/outbound/openapi"
	"github.com/i2y/pispi/internal/normalizer"
	"github.com/i2y/pispi/internal/usecase"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		source   string
		output   string
		headers  map[string]string
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Repair the OpenAPI description before code generation",
		Long: "Ensures every operation has tags and an operationId, drops null operations " +
			"and writes the document back. Exits non-zero when a required top-level section is missing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("source") {
				cfg.SpecSource = source
			}
			if cmd.Flags().Changed("output") {
				cfg.SpecOutput = output
			}
			if cmd.Flags().Changed("header") {
				cfg.SpecHeaders = headers
			}
			if cmd.Flags().Changed("validate") {
				cfg.Validate = validate
			}

			httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
			ghFetcher := github.NewFetcher(nil, a.logger)
			fetcher := openapi.NewSpecFetcher(httpClient, a.fs, ghFetcher, a.logger)

			uc := usecase.NewNormalizeSpecUseCase(
				fetcher,
				openapi.NewValidator(a.logger),
				normalizer.New(a.logger),
				a.fs,
				a.recorder,
				a.logger,
			)

			_, err := uc.Execute(cmd.Context(), usecase.NormalizeRequest{
				Source:     usecase.SpecSourceConfig{URL: cfg.SpecSource, Headers: cfg.SpecHeaders},
				OutputPath: cfg.SpecOutput,
				Validate:   cfg.Validate,
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Spec source: file path, http(s) URL or github://owner/repo/path[@ref]")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults to the source when it is a local file)")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Request header for remote sources, as key=value (repeatable)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Run advisory OpenAPI validation after normalizing")
	return cmd
}
