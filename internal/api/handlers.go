// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/meetra-labs/recommend/internal/geo"
	"github.com/meetra-labs/recommend/internal/recommend"
)

// maxBodyBytes bounds POST request bodies.
const maxBodyBytes = 1 << 20 // 1 MiB

// UserDirectory resolves a user ID to a stored profile for GET requests,
// where the client sends only the ID. A miss is not an error: unknown users
// get a cold-start profile with just the ID set.
type UserDirectory interface {
	Lookup(ctx context.Context, userID string) (recommend.UserProfile, bool)
}

// Handler holds the engine and its collaborators for the HTTP surface.
type Handler struct {
	engine *recommend.Engine
	users  UserDirectory
}

// NewHandler creates a handler. users may be nil; GET requests then always
// use cold-start profiles.
func NewHandler(engine *recommend.Engine, users UserDirectory) *Handler {
	return &Handler{engine: engine, users: users}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]string{"status": "ok"})
}

// Categories lists the known activity categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, recommend.Categories)
}

// GetRecommendations serves GET /api/v1/recommendations. The user profile
// is resolved through the directory; situational inputs and filters come
// from query parameters.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	req, err := h.requestFromQuery(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	h.recommend(w, r, req)
}

// PostRecommendations serves POST /api/v1/recommendations with a full
// request document, including an inline user profile. This is the surface
// for callers that manage profiles themselves.
func (h *Handler) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest,
			"malformed request body: "+err.Error())
		return
	}
	if req.RequestID == "" {
		req.RequestID = chimiddleware.GetReqID(r.Context())
	}

	h.recommend(w, r, req)
}

// recommend runs the engine and maps its errors onto HTTP statuses.
func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, req recommend.Request) {
	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondOK(w, r, resp)
}

// requestFromQuery builds a recommend.Request from GET query parameters.
func (h *Handler) requestFromQuery(r *http.Request) (recommend.Request, error) {
	q := r.URL.Query()

	userID := q.Get("user_id")
	if userID == "" {
		return recommend.Request{}, errors.New("user_id is required")
	}

	req := recommend.Request{
		User:      recommend.UserProfile{ID: userID},
		RequestID: chimiddleware.GetReqID(r.Context()),
	}
	if h.users != nil {
		if profile, ok := h.users.Lookup(r.Context(), userID); ok {
			req.User = profile
		}
	}

	if v := q.Get("category"); v != "" {
		req.Filters.Category = recommend.Category(v)
	}
	if v := q.Get("radius_meters"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius < 0 {
			return recommend.Request{}, fmt.Errorf("invalid radius_meters %q", v)
		}
		req.Filters.RadiusMeters = radius
	}

	priceMin, priceMax := q.Get("price_min"), q.Get("price_max")
	if priceMin != "" || priceMax != "" {
		price := recommend.PriceRange{Min: 0, Max: 4}
		if priceMin != "" {
			n, err := strconv.Atoi(priceMin)
			if err != nil {
				return recommend.Request{}, fmt.Errorf("invalid price_min %q", priceMin)
			}
			price.Min = n
		}
		if priceMax != "" {
			n, err := strconv.Atoi(priceMax)
			if err != nil {
				return recommend.Request{}, fmt.Errorf("invalid price_max %q", priceMax)
			}
			price.Max = n
		}
		req.Filters.Price = &price
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return recommend.Request{}, fmt.Errorf("invalid limit %q", v)
		}
		req.Limit = n
	}

	req.Context.Weather = recommend.Weather(q.Get("weather"))
	req.Context.Season = recommend.Season(q.Get("season"))

	lat, lon := q.Get("lat"), q.Get("lon")
	if lat != "" || lon != "" {
		if lat == "" || lon == "" {
			return recommend.Request{}, errors.New("lat and lon must be provided together")
		}
		latF, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return recommend.Request{}, fmt.Errorf("invalid lat %q", lat)
		}
		lonF, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return recommend.Request{}, fmt.Errorf("invalid lon %q", lon)
		}
		req.Context.Location = &geo.Point{Lat: latF, Lon: lonF}
	}

	return req, nil
}

// respondEngineError maps engine errors onto HTTP statuses. Validation
// failures are the client's fault; pool failures mean the service cannot
// answer right now; context errors mean the request ran out of time.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, recommend.ErrPoolUnavailable), errors.Is(err, recommend.ErrNoCandidateStore):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"candidate pool unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeGatewayTimeout,
			"request canceled or timed out")
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
			"internal error")
	}
}
