package handlers

import "context"

// VersionInput is the input for the version endpoint.
type VersionInput struct{}

// VersionOutput is the output for the version endpoint.
type VersionOutput struct {
	Body BuildInfo
}

// VersionCheck returns a handler reporting info.
func VersionCheck(info BuildInfo) func(context.Context, *VersionInput) (*VersionOutput, error) {
	return func(_ context.Context, _ *VersionInput) (*VersionOutput, error) {
		return &VersionOutput{Body: info}, nil
	}
}
