// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes replacement search, parameter ranking, and part
// comparison as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/partswap/internal/catalog"
	"github.com/pdiddy/partswap/internal/compare"
	"github.com/pdiddy/partswap/internal/rank"
	"github.com/pdiddy/partswap/internal/replace"
	"github.com/pdiddy/partswap/internal/report"
	"github.com/pdiddy/partswap/pkg/types"
)

const maxBodyBytes = 1 << 20

// Finder runs one replacement search.
type Finder interface {
	Find(ctx context.Context, partNumber string, opts replace.Options) (*types.ReplacementResult, error)
}

// Ranker orders parameters by criticality.
type Ranker interface {
	Rank(ctx context.Context, params []types.Parameter, subject, category string) []types.Parameter
}

// Server holds the API's collaborators.
type Server struct {
	Finder  Finder
	Ranker  Ranker
	Lookup  compare.Lookuper
	Log     *zap.Logger
	Timeout time.Duration
}

// Router builds the chi router for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)
	if s.Timeout > 0 {
		r.Use(chimiddleware.Timeout(s.Timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/replacements", s.findReplacements)
		r.Post("/rank", s.rankParameters)
		r.Get("/compare", s.compareParts)
	})
	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger().Info("request",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// --- replacements ---

// ReplacementRequest is the body of POST /v1/replacements.
type ReplacementRequest struct {
	PartNumber string `json:"part_number"`

	// RequireResults defaults to true when omitted.
	RequireResults *bool  `json:"require_results,omitempty"`
	FamilyMode     string `json:"family_mode,omitempty"`
}

func (s *Server) findReplacements(w http.ResponseWriter, r *http.Request) {
	var req ReplacementRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mode, err := types.ParseFamilyMode(req.FamilyMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := replace.Options{RequireResults: true, FamilyMode: mode}
	if req.RequireResults != nil {
		opts.RequireResults = *req.RequireResults
	}

	res, err := s.Finder.Find(r.Context(), req.PartNumber, opts)
	switch {
	case errors.Is(err, replace.ErrMissingPartNumber):
		writeJSON(w, http.StatusBadRequest, res)
	case errors.Is(err, catalog.ErrNoCredentials):
		writeJSON(w, http.StatusServiceUnavailable, res)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// --- rank ---

// RankResponse is the answer to POST /v1/rank.
type RankResponse struct {
	Ranked []types.Parameter `json:"ranked"`
}

// rankParameters accepts {params, mpn, category} or a bare params list.
// Parameter ids and values may be strings or numbers.
func (s *Server) rankParameters(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	pf, err := report.ParseParams(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ranker := s.Ranker
	if ranker == nil {
		ranker = &rank.Prioritizer{Log: s.logger()}
	}
	writeJSON(w, http.StatusOK, RankResponse{Ranked: ranker.Rank(r.Context(), pf.Params, pf.MPN, pf.Category)})
}

// --- compare ---

func (s *Server) compareParts(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}
	cmp, err := compare.Compare(r.Context(), s.Lookup, a, b)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, catalog.ErrNoCredentials) {
			status = http.StatusServiceUnavailable
		}
		s.logger().Warn("compare failed", zap.String("a", a), zap.String("b", b), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// --- helpers ---

type errorResponse struct {
	Error string `json:"error"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
