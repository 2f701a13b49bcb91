package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/plugsunset/internal/http/handlers"
	"github.com/jmylchreest/plugsunset/internal/http/routes"
)

// newOpenAPICommand prints the status API document. It uses the shared route
// definitions with stub handlers, so it needs no configuration or device.
func newOpenAPICommand(info handlers.BuildInfo) *cobra.Command {
	var (
		outputFile string
		outputYAML bool
		baseURL    string
	)
	cmd := &cobra.Command{
		Use:               "openapi",
		Short:             "Print the OpenAPI document of the status API",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := humachi.New(chi.NewRouter(), routes.NewHumaConfig(info.Version, baseURL))
			routes.Register(api, routes.StubHandlers())

			var data []byte
			var err error
			if outputYAML {
				data, err = yaml.Marshal(api.OpenAPI())
			} else {
				data, err = json.MarshalIndent(api.OpenAPI(), "", "  ")
			}
			if err != nil {
				return fmt.Errorf("error marshaling OpenAPI document: %w", err)
			}

			if outputFile != "" {
				if err := os.WriteFile(outputFile, data, 0o644); err != nil {
					return fmt.Errorf("error writing to file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "OpenAPI document written to %s\n", outputFile)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&outputYAML, "yaml", false, "Output as YAML instead of JSON")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Base URL for the API server")
	return cmd
}
