// Package httpapi exposes the engine over HTTP. It is a thin wrapper: identity
// arrives in headers, every outcome maps onto a status code, and all real
// semantics live in the event package.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reviewflow/event"
	"reviewflow/team"
	"reviewflow/telemetry"
)

// Assigner claims batches of pending events.
type Assigner interface {
	ClaimBatch(ctx context.Context, userID string, regions []string, maxCount int) ([]event.AssignedEvent, error)
}

// Reviewer finalises events with a regional acknowledgement.
type Reviewer interface {
	SubmitReview(ctx context.Context, params event.SubmitReviewParams) error
}

// Requeuer sweeps expired leases back to the pending pool.
type Requeuer interface {
	RequeueExpired(ctx context.Context) event.RequeueReport
}

// TeamResolver supplies the claim eligibility filter for a team.
type TeamResolver interface {
	GetConfig(ctx context.Context, teamID string) (team.Config, error)
}

// Server wires HTTP handlers for the event distribution API.
type Server struct {
	assigner Assigner
	reviewer Reviewer
	requeuer Requeuer
	teams    TeamResolver
}

func New(assigner Assigner, reviewer Reviewer, requeuer Requeuer, teams TeamResolver) *Server {
	return &Server{
		assigner: assigner,
		reviewer: reviewer,
		requeuer: requeuer,
		teams:    teams,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", handleHealth)
	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events/batch", s.handleClaimBatch)
		r.Post("/events/{eventID}/review", s.handleSubmitReview)
		r.Post("/internal/trigger-requeue", s.handleTriggerRequeue)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleClaimBatch(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	teamID := r.Header.Get("X-Team-Id")
	if userID == "" || teamID == "" {
		writeError(w, http.StatusBadRequest, "X-User-Id and X-Team-Id headers are required")
		return
	}

	cfg, err := s.teams.GetConfig(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			writeError(w, http.StatusNotFound, "unknown team")
			return
		}
		log.Printf("httpapi: resolve team %s: %v", teamID, err)
		writeError(w, http.StatusInternalServerError, "failed to resolve team configuration")
		return
	}

	batch, err := s.assigner.ClaimBatch(r.Context(), userID, cfg.AllowedRegions, cfg.BatchSize)
	if err != nil {
		log.Printf("httpapi: claim batch for user %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to assign event batch")
		return
	}

	if len(batch) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No events currently available for assignment."})
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

type submitReviewRequest struct {
	Decision string  `json:"decision"`
	Rating   *int    `json:"rating"`
	Comment  *string `json:"comment"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-Id header is required")
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Decision == "" {
		writeError(w, http.StatusBadRequest, `missing required field: decision ("Approved" or "Rejected")`)
		return
	}

	err := s.reviewer.SubmitReview(r.Context(), event.SubmitReviewParams{
		UserID:   userID,
		EventID:  eventID,
		Decision: event.Decision(req.Decision),
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Review submitted successfully for event " + eventID})
	case errors.Is(err, event.ErrInvalidDecision):
		writeError(w, http.StatusBadRequest, `invalid value for decision, must be "Approved" or "Rejected"`)
	case errors.Is(err, event.ErrNotAssigned):
		writeError(w, http.StatusNotFound, "event not found, not assigned to you, or not in Assigned state")
	case errors.Is(err, event.ErrMissingExternalID):
		writeError(w, http.StatusBadRequest, "event has no external identifier for regional dispatch")
	case errors.Is(err, event.ErrRegionalDelivery):
		writeError(w, http.StatusBadGateway, "regional system did not acknowledge the review; changes rolled back, retry later")
	default:
		log.Printf("httpapi: submit review for event %s: %v", eventID, err)
		writeError(w, http.StatusInternalServerError, "failed to process review")
	}
}

func (s *Server) handleTriggerRequeue(w http.ResponseWriter, r *http.Request) {
	report := s.requeuer.RequeueExpired(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Re-queue process triggered successfully.",
		"details": report,
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
