package api

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/wordsort/pkg/history"
	"github.com/hazyhaar/wordsort/pkg/kit"
	"github.com/hazyhaar/wordsort/pkg/preset"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

// Shared request/response types used by both HTTP and MCP transports.

type sortReq struct {
	Text      string
	Preset    string
	Overrides optionOverrides
}

type sortResponse struct {
	*wordsort.Result
	Preset  string           `json:"preset"`
	Options wordsort.Options `json:"options"`
}

type presetsResponse struct {
	Presets []*preset.Preset `json:"presets"`
}

type localesResponse struct {
	Default string   `json:"default"`
	Locales []string `json:"locales"`
}

type historyReq struct {
	Limit int
}

type historyResponse struct {
	Runs  []history.Run `json:"runs"`
	Stats history.Stats `json:"stats"`
}

// errHistoryDisabled is returned by the history endpoint when no store is configured.
var errHistoryDisabled = fmt.Errorf("history is disabled")

func sortEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*sortReq)
		opts, err := svc.resolveOptions(req.Preset, req.Overrides)
		if err != nil {
			return nil, err
		}
		presetID := req.Preset
		if presetID == "" {
			presetID = "default"
		}
		return &sortResponse{
			Result:  svc.Sorter.Sort(req.Text, opts),
			Preset:  presetID,
			Options: opts,
		}, nil
	}
}

func listPresetsEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return presetsResponse{Presets: svc.Presets.List()}, nil
	}
}

func listLocalesEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return localesResponse{Default: svc.Sorter.FallbackLocale(), Locales: wordsort.Locales()}, nil
	}
}

func historyEndpoint(svc *Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		if svc.History == nil {
			return nil, errHistoryDisabled
		}
		req := request.(*historyReq)
		runs, err := svc.History.List(ctx, req.Limit)
		if err != nil {
			return nil, err
		}
		stats, err := svc.History.Stats(ctx)
		if err != nil {
			return nil, err
		}
		if runs == nil {
			runs = []history.Run{}
		}
		return historyResponse{Runs: runs, Stats: stats}, nil
	}
}

// recordRuns stores one history row per sort. Storage errors are logged,
// never returned to the caller.
func recordRuns(svc *Service) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			resp, err := next(ctx, request)
			if err != nil || svc.History == nil {
				return resp, err
			}
			sr, ok := resp.(*sortResponse)
			if !ok {
				return resp, err
			}
			run := history.NewRun(kit.GetTransport(ctx), sr.Options, sr.Result)
			recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if rerr := svc.History.Record(recCtx, run); rerr != nil {
				svc.logger().Error("record sort run", "request_id", kit.GetRequestID(ctx), "error", rerr)
			}
			return resp, err
		}
	}
}

// sortPipeline is the sort endpoint with its middlewares.
func sortPipeline(svc *Service) kit.Endpoint {
	return kit.Chain(
		kit.RequestID(),
		kit.Logging(svc.logger(), "sort"),
		recordRuns(svc),
	)(sortEndpoint(svc))
}
