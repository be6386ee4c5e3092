package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultEndpoint is used when neither OLP_URL nor OLP_BASE_URL is set.
const DefaultEndpoint = "http://127.0.0.1:8088/frame"

type endpointEnv struct {
	URL     string `env:"OLP_URL"`
	BaseURL string `env:"OLP_BASE_URL"`
}

// ResolveEndpoint returns the frame URL from the process environment.
func ResolveEndpoint() string {
	e, err := env.ParseAs[endpointEnv]()
	if err != nil {
		return DefaultEndpoint
	}
	return e.resolve()
}

func (e endpointEnv) resolve() string {
	if u := strings.TrimSpace(e.URL); u != "" {
		return u
	}
	if base := strings.TrimSpace(e.BaseURL); base != "" {
		return strings.TrimRight(base, "/") + "/frame"
	}
	return DefaultEndpoint
}
