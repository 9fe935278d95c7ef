package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	perrors "github.com/pairbench/pairbench/internal/errors"
	"github.com/pairbench/pairbench/internal/runner"
	"github.com/pairbench/pairbench/internal/workload"
)

// Default input magnitudes per workload when query parameters are omitted.
const (
	defaultMemorySize      = 10000
	defaultLookupSize      = 100000
	defaultLookupTarget    = 99999
	defaultLookupRepeats   = 500
	defaultIterationSize   = 100000
	defaultAggregationSize = 200000
)

// PerformanceHandler serves the workload comparison endpoints under
// /api/performance/{workload}/{before|after|compare}.
type PerformanceHandler struct {
	runner *runner.Runner
}

// NewPerformanceHandler creates the handler over a comparison runner.
func NewPerformanceHandler(r *runner.Runner) *PerformanceHandler {
	return &PerformanceHandler{runner: r}
}

// ServeHTTP routes a performance request to the named workload and action.
func (h *PerformanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	rest := strings.TrimPrefix(r.URL.Path, "/api/performance/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusNotFound, "expected /api/performance/{workload}/{before|after|compare}", "", requestID)
		return
	}
	name, action := parts[0], parts[1]

	in, err := decodeInput(r, name)
	if err != nil {
		writeAppError(w, err, requestID)
		return
	}

	switch action {
	case "compare":
		cmp, err := h.runner.CompareBoth(r.Context(), name, in)
		if err != nil {
			writeAppError(w, err, requestID)
			return
		}
		writeJSON(w, http.StatusOK, cmp)

	case "before", "after":
		variant := workload.VariantBaseline
		if action == "after" {
			variant = workload.VariantOptimized
		}
		result, err := h.runner.Run(r.Context(), name, variant, in)
		if err != nil {
			writeAppError(w, err, requestID)
			return
		}
		writeJSON(w, http.StatusOK, result)

	default:
		writeAppError(w, perrors.NewValidationError(perrors.CodeUnknownVariant,
			fmt.Sprintf("unknown action %q, expected before, after, or compare", action)), requestID)
	}
}

// decodeInput builds a validated workload input from the request. The two
// identifier-driven workloads take a JSON array body; the rest take integer
// query parameters with per-workload defaults.
func decodeInput(r *http.Request, name string) (workload.Input, error) {
	switch name {
	case workload.NameDataAccess, workload.NameCache:
		return decodeIDList(r)
	case workload.NameMemory:
		return decodeSizeParams(r, defaultMemorySize)
	case workload.NameLookup:
		in, err := decodeSizeParams(r, defaultLookupSize)
		if err != nil {
			return workload.Input{}, err
		}
		if in.Target, err = intParam(r, "target", defaultLookupTarget, perrors.CodeInvalidTarget); err != nil {
			return workload.Input{}, err
		}
		if in.Repeats, err = intParam(r, "repeats", defaultLookupRepeats, perrors.CodeInvalidRepeats); err != nil {
			return workload.Input{}, err
		}
		return in, nil
	case workload.NameIteration:
		return decodeSizeParams(r, defaultIterationSize)
	case workload.NameAggregation:
		return decodeSizeParams(r, defaultAggregationSize)
	default:
		// Let the runner produce the canonical unknown-workload error.
		return workload.Input{}, nil
	}
}

func decodeIDList(r *http.Request) (workload.Input, error) {
	if r.Body == nil {
		return workload.Input{}, nil
	}

	var ids []int64
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&ids); err != nil {
		return workload.Input{}, perrors.NewValidationError(perrors.CodeMalformedIDList,
			fmt.Sprintf("request body must be a JSON array of integer ids: %v", err))
	}
	return workload.Input{IDs: ids}, nil
}

func decodeSizeParams(r *http.Request, defaultSize int) (workload.Input, error) {
	size, err := intParam(r, "size", defaultSize, perrors.CodeInvalidSize)
	if err != nil {
		return workload.Input{}, err
	}
	return workload.Input{Size: size}, nil
}

func intParam(r *http.Request, name string, defaultValue int, code string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perrors.NewValidationError(code,
			fmt.Sprintf("query parameter %q must be an integer, got %q", name, raw))
	}
	return v, nil
}

// writeAppError maps a typed error to an HTTP status.
func writeAppError(w http.ResponseWriter, err error, requestID string) {
	code := perrors.GetCode(err)

	status := http.StatusInternalServerError
	switch perrors.GetCategory(err) {
	case perrors.ErrCategoryValidation:
		status = http.StatusBadRequest
		if code == perrors.CodeUnknownWorkload {
			status = http.StatusNotFound
		}
	case perrors.ErrCategoryDataAccess:
		status = http.StatusBadGateway
	case perrors.ErrCategoryWorkload:
		// Collaborator failures surface wrapped in workload errors;
		// keep them distinguishable from harness bugs.
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			if perrors.GetCategory(cause) == perrors.ErrCategoryDataAccess {
				status = http.StatusBadGateway
				break
			}
		}
	}

	writeError(w, status, err.Error(), code, requestID)
}
