package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/statkit/resample/pkg/estimator"
	"github.com/statkit/resample/pkg/replicator"
	"github.com/statkit/resample/pkg/sampler"
	"github.com/statkit/resample/pkg/storage"
	"github.com/statkit/resample/pkg/summary"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, JSON{"status": "ok"})
}

func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	datasets, err := storage.ListDatasets(ctx, h.db)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, JSON{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, JSON{"datasets": datasets})
}

type CreateDatasetRequest struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values,omitempty"`
	YValues []float64 `json:"y_values,omitempty"`

	// Generate draws the values instead of taking them inline.
	Generate *sampler.Config `json:"generate,omitempty"`
	Seed     int64           `json:"seed,omitempty"`
}

func (h *Handler) PostCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, JSON{"error": "invalid json"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, JSON{"error": "name required"})
		return
	}

	values := req.Values
	if len(values) == 0 && req.Generate != nil {
		rng := rand.New(rand.NewSource(seedOrNow(req.Seed)))
		drawn, err := sampler.Draw(rng, *req.Generate)
		if err != nil {
			writeJSON(w, statusFor(err), JSON{"error": err.Error()})
			return
		}
		values = drawn
	}
	if len(values) == 0 {
		writeJSON(w, http.StatusBadRequest, JSON{"error": "values or generate required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var ys []float64
	if len(req.YValues) > 0 {
		ys = req.YValues
	}
	id, err := storage.InsertDataset(ctx, h.db, req.Name, values, ys)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, JSON{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, JSON{"status": "ok", "id": id, "name": req.Name, "points": len(values)})
}

type BootstrapRequest struct {
	Dataset   string    `json:"dataset,omitempty"`
	Values    []float64 `json:"values,omitempty"`
	Estimator string    `json:"estimator,omitempty"`
	B         int       `json:"b"`
	Seed      int64     `json:"seed,omitempty"`

	// Sampling strategy; defaults to empirical resampling of the source.
	Mode  string  `json:"mode,omitempty"`
	N     int     `json:"n,omitempty"`
	Rho   float64 `json:"rho,omitempty"`
	Shift float64 `json:"shift,omitempty"`

	// Distribution-mode parameters.
	Dist   string  `json:"dist,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`
	Low    float64 `json:"low,omitempty"`
	High   float64 `json:"high,omitempty"`
	Rate   float64 `json:"rate,omitempty"`

	Confidence float64   `json:"confidence,omitempty"`
	Probs      []float64 `json:"probs,omitempty"`
}

func (h *Handler) PostBootstrap(w http.ResponseWriter, r *http.Request) {
	var req BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, JSON{"error": "invalid json"})
		return
	}
	if req.Estimator == "" {
		req.Estimator = "mean"
	}
	if req.Confidence == 0 {
		req.Confidence = 0.95
	}
	if req.Mode == "" {
		req.Mode = string(sampler.ModeEmpirical)
	}
	probs := req.Probs
	if len(probs) == 0 {
		alpha := 1 - req.Confidence
		probs = []float64{alpha / 2, 0.5, 1 - alpha/2}
	}
	seed := seedOrNow(req.Seed)
	rng := rand.New(rand.NewSource(seed))

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if req.Estimator == "slope" {
		h.bootstrapSlope(ctx, w, req, rng, seed, probs)
		return
	}

	est, ok := estimator.ByName(req.Estimator)
	if !ok {
		writeJSON(w, http.StatusBadRequest, JSON{"error": "unknown estimator: " + req.Estimator})
		return
	}

	source := req.Values
	if len(source) == 0 && req.Dataset != "" {
		xs, _, err := storage.GetDataset(ctx, h.db, req.Dataset)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, JSON{"error": "dataset not found: " + req.Dataset})
			return
		}
		source = xs
	}

	cfg := sampler.Config{
		Mode:   sampler.Mode(req.Mode),
		N:      req.N,
		Dist:   req.Dist,
		Mean:   req.Mean,
		StdDev: req.StdDev,
		Low:    req.Low,
		High:   req.High,
		Rate:   req.Rate,
		Source: source,
		Rho:    req.Rho,
		Shift:  req.Shift,
	}
	if cfg.Mode == sampler.ModeEmpirical {
		if len(source) == 0 {
			writeJSON(w, http.StatusBadRequest, JSON{"error": "values or dataset required for empirical mode"})
			return
		}
		if cfg.N == 0 {
			cfg.N = len(source)
		}
	}

	replicates, err := replicator.Run(rng, req.B, cfg, est)
	if err != nil {
		writeJSON(w, statusFor(err), JSON{"error": err.Error()})
		return
	}

	sum, err := summary.Summarize(replicates, probs)
	if err != nil {
		writeJSON(w, statusFor(err), JSON{"error": err.Error()})
		return
	}
	ciLow, ciHigh, err := summary.Interval(replicates, req.Confidence)
	if err != nil {
		writeJSON(w, statusFor(err), JSON{"error": err.Error()})
		return
	}

	// Point estimate: the estimator on the full source sample when one
	// exists, otherwise the center of the replicate distribution.
	estimate := sum.Mean
	if len(source) > 0 {
		if v, eerr := est(source); eerr == nil {
			estimate = v
		}
	}

	resp := JSON{
		"status":    "ok",
		"estimator": req.Estimator,
		"mode":      req.Mode,
		"b":         req.B,
		"n":         cfg.N,
		"seed":      seed,
		"estimate":  estimate,
		"ci_low":    ciLow,
		"ci_high":   ciHigh,
		"std_error": sum.StdError,
		"summary":   sum,
	}

	// For the mean over an observed sample, report the analytic normal
	// interval next to the percentile interval.
	if req.Estimator == "mean" && len(source) > 0 {
		if sd, serr := estimator.StdDev(source); serr == nil {
			if m, merr := estimator.Mean(source); merr == nil {
				if nlo, nhi, nerr := summary.NormalInterval(m, sd, len(source), req.Confidence); nerr == nil {
					resp["normal_ci_low"] = nlo
					resp["normal_ci_high"] = nhi
				}
			}
		}
	}

	runID, err := storage.InsertRun(ctx, h.db, storage.RunInfo{
		Dataset:    req.Dataset,
		Mode:       req.Mode,
		Estimator:  req.Estimator,
		N:          cfg.N,
		B:          req.B,
		Rho:        req.Rho,
		Seed:       seed,
		Estimate:   estimate,
		CILow:      ciLow,
		CIHigh:     ciHigh,
		StdError:   sum.StdError,
		Confidence: req.Confidence,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, JSON{"error": err.Error()})
		return
	}
	resp["run_id"] = runID

	writeJSON(w, http.StatusOK, resp)
}

// bootstrapSlope runs the paired-resampling path: whole (x, y) observations
// are resampled together and the least-squares slope recomputed per replicate.
func (h *Handler) bootstrapSlope(ctx context.Context, w http.ResponseWriter, req BootstrapRequest, rng *rand.Rand, seed int64, probs []float64) {
	if req.Dataset == "" {
		writeJSON(w, http.StatusBadRequest, JSON{"error": "slope estimator requires a paired dataset"})
		return
	}
	pairs, err := storage.GetDatasetPairs(ctx, h.db, req.Dataset)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, JSON{"error": err.Error()})
		return
	}

	replicates, err := replicator.RunPaired(rng, req.B, pairs, estimator.Slope)
	if err != nil {
		writeJSON(w, statusFor(err), JSON{"error": err.Error()})
		return
	}
	sum, err := summary.Summarize(replicates, probs)
	if err != nil {
		writeJSON(w, statusFor(err), JSON{"error": err.Error()})
		return
	}
	ciLow, ciHigh, err := summary.Interval(replicates, req.Confidence)
	if err != nil {
		writeJSON(w, statusFor(err), JSON{"error": err.Error()})
		return
	}

	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i] = p.X
		ys[i] = p.Y
	}
	estimate, err := estimator.Slope(xs, ys)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, JSON{"error": err.Error()})
		return
	}

	runID, err := storage.InsertRun(ctx, h.db, storage.RunInfo{
		Dataset:    req.Dataset,
		Mode:       string(sampler.ModeEmpirical),
		Estimator:  "slope",
		N:          len(pairs),
		B:          req.B,
		Seed:       seed,
		Estimate:   estimate,
		CILow:      ciLow,
		CIHigh:     ciHigh,
		StdError:   sum.StdError,
		Confidence: req.Confidence,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, JSON{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, JSON{
		"status":    "ok",
		"run_id":    runID,
		"estimator": "slope",
		"mode":      string(sampler.ModeEmpirical),
		"b":         req.B,
		"n":         len(pairs),
		"seed":      seed,
		"estimate":  estimate,
		"ci_low":    ciLow,
		"ci_high":   ciHigh,
		"std_error": sum.StdError,
		"summary":   sum,
	})
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	runs, err := storage.ListRuns(ctx, h.db, 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, JSON{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, JSON{"runs": runs})
}

func seedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// statusFor maps validation failures to 400 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sampler.ErrInvalidParameter),
		errors.Is(err, replicator.ErrInvalidReplicates),
		errors.Is(err, summary.ErrInvalidParameter),
		errors.Is(err, summary.ErrInsufficientReplicates),
		errors.Is(err, estimator.ErrEmptySample):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
