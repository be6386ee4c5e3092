package cli

import (
	"github.com/spf13/cobra"
)

// EndpointResult is the resolved bus endpoint.
type EndpointResult struct {
	Endpoint string `json:"endpoint"`
}

// Text renders the endpoint alone, for use in scripts.
func (r EndpointResult) Text() string {
	return r.Endpoint
}

// NewEndpointCommand creates the endpoint command.
func NewEndpointCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint",
		Short: "Print the resolved bus endpoint",
		Long: `Print the frame URL that send would post to.

Resolution: OLP_URL, then OLP_BASE_URL + "/frame", then
http://127.0.0.1:8088/frame.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := rootOpts.settings(cmd)
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(EndpointResult{Endpoint: cfg.Endpoint})
		},
	}
}
