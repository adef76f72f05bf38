package valuation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"fcf_valuation/pkg/core/assumption"
	corevaluation "fcf_valuation/pkg/core/valuation"
)

var valuationErrors = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusUnprocessableEntity,
	http.StatusBadGateway,
	http.StatusGatewayTimeout,
}

func registerValuation(api huma.API, svc *corevaluation.Service, defaults assumption.Set) {
	huma.Register(api, huma.Operation{
		OperationID: "value-ticker",
		Method:      http.MethodPost,
		Path:        "/valuation",
		Summary:     "Two-stage free cash flow valuation of one ticker",
		Errors:      valuationErrors,
	}, func(ctx context.Context, input *struct {
		Body ValuationRequest `json:"body"`
	}) (*struct {
		Body ValuationResponse `json:"body"`
	}, error) {
		ticker := strings.TrimSpace(input.Body.Ticker)
		if ticker == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "ticker is required",
				map[string]any{"request": input.Body})
		}

		report, err := svc.Value(ctx, ticker, input.Body.apply(defaults))
		if err != nil {
			return nil, handleError(err, input.Body)
		}
		return &struct {
			Body ValuationResponse `json:"body"`
		}{Body: NewValuationResponse(report)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "value-batch",
		Method:      http.MethodPost,
		Path:        "/valuation/batch",
		Summary:     "Value several tickers with the same assumptions",
		Description: "Each ticker succeeds or fails on its own; failures are reported per item.",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body BatchRequest `json:"body"`
	}) (*struct {
		Body BatchResponse `json:"body"`
	}, error) {
		set := input.Body.apply(defaults)
		if err := set.Validate(); err != nil {
			return nil, handleError(err, input.Body)
		}

		var tickers []string
		for _, t := range input.Body.Tickers {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "at least one ticker is required",
				map[string]any{"request": input.Body})
		}

		resp := BatchResponse{Items: make([]BatchItemResponse, 0, len(tickers))}
		for _, item := range svc.ValueMany(ctx, tickers, set) {
			out := BatchItemResponse{Ticker: strings.ToUpper(item.Ticker)}
			if item.Err != nil {
				_, body := errorBody(item.Err, nil)
				out.Error = &body
				resp.Failed++
			} else {
				r := NewValuationResponse(item.Report)
				out.Report = &r
				resp.Succeeded++
			}
			resp.Items = append(resp.Items, out)
		}
		return &struct {
			Body BatchResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func registerCache(api huma.API, svc *corevaluation.Service) {
	type tickerPath struct {
		Ticker string `path:"ticker" minLength:"1"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "clear-cache",
		Method:      http.MethodDelete,
		Path:        "/cache/{ticker}",
		Summary:     "Drop cached statements for a ticker",
		Errors:      []int{http.StatusBadGateway},
	}, func(ctx context.Context, input *tickerPath) (*struct {
		Body CacheClearResponse `json:"body"`
	}, error) {
		ticker := strings.ToUpper(strings.TrimSpace(input.Ticker))
		cleared, err := svc.Invalidate(ctx, ticker)
		if err != nil {
			return nil, newAPIError(http.StatusBadGateway, "cache_error", err.Error(), map[string]any{"ticker": ticker})
		}
		return &struct {
			Body CacheClearResponse `json:"body"`
		}{Body: CacheClearResponse{Ticker: ticker, Cleared: cleared}}, nil
	})
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
