// Package config serves the server's default valuation settings.
package config

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"fcf_valuation/pkg/core/assumption"
)

type Response struct {
	Source   string         `json:"source" doc:"Where statements and prices come from"`
	Defaults assumption.Set `json:"defaults"`
}

// Register adds GET /config.
func Register(api huma.API, defaults assumption.Set, source string) {
	huma.Register(api, huma.Operation{
		OperationID: "get-config",
		Method:      http.MethodGet,
		Path:        "/config",
		Summary:     "Default assumptions applied to omitted request fields",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body Response `json:"body"`
	}, error) {
		return &struct {
			Body Response `json:"body"`
		}{Body: Response{Source: source, Defaults: defaults}}, nil
	})
}
