// Command trust-oracle is a stand-in for the external trust score oracle.
// It serves GET /scores/{identity} with deterministic scores derived from the
// address, optionally overridden per identity via the SCORES env var
// ("0xabc...=0.8,0xdef...=0.3").
package main

import (
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type scoreResponse struct {
	Identity string  `json:"identity"`
	Score    float64 `json:"score"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	addr := envOr("ADDR", ":9091")
	overrides := parseOverrides(os.Getenv("SCORES"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /scores/{identity}", func(w http.ResponseWriter, r *http.Request) {
		identity := strings.ToLower(r.PathValue("identity"))
		score, ok := overrides[identity]
		if !ok {
			score = derivedScore(identity)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scoreResponse{Identity: identity, Score: score})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("mock trust oracle listening", "addr", addr, "overrides", len(overrides))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// derivedScore hashes the address into [0,1) so repeated lookups for the same
// identity always agree.
func derivedScore(identity string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return float64(h.Sum32()%1000) / 1000
}

func parseOverrides(raw string) map[string]float64 {
	out := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || score < 0 || score > 1 {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(key))] = score
	}
	return out
}
