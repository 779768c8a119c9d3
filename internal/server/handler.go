package server

import (
	"fmt"
	"net/http"

	"resumediff/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// compareHandler diffs two resume versions word by word
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumediff.api").Start(r.Context(), "api.compare")
	defer span.End()

	var req CompareRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if msg := s.textTooLarge("oldText", req.OldText); msg != "" {
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Old text too large", msg, http.StatusBadRequest)
		return
	}
	if msg := s.textTooLarge("newText", req.NewText); msg != "" {
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "New text too large", msg, http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.Int("request.old_length", len(req.OldText)),
		attribute.Int("request.new_length", len(req.NewText)),
		attribute.String("request.id", requestIDFrom(ctx)),
	)

	result, err := s.compare.Compare(ctx, types.CompareInput(req))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeAppError(w, "Failed to compare resumes", err)
		return
	}

	span.SetAttributes(attribute.String("comparison.id", result.ID))
	writeJSON(w, http.StatusOK, result)
}

// tailorHandler tailors a resume with the AI provider and returns it with its diff
func (s *Server) tailorHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumediff.api").Start(r.Context(), "api.tailor")
	defer span.End()

	if s.ai == nil {
		writeErrorResponse(w, "AI service unavailable", "Resume tailoring is not configured on this server", http.StatusServiceUnavailable)
		return
	}

	var req TailorRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if msg := s.textTooLarge("baseResume", req.BaseResume); msg != "" {
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Base resume too large", msg, http.StatusBadRequest)
		return
	}
	if msg := s.textTooLarge("jobDescription", req.JobDescription); msg != "" {
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Job description too large", msg, http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.BaseResume)),
		attribute.Int("request.job_length", len(req.JobDescription)),
		attribute.String("request.id", requestIDFrom(ctx)),
	)

	result, err := s.ai.TailorResume(ctx, types.TailorResumeInput(req))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Logger.LogError(err, "Failed to tailor resume", "request_id", requestIDFrom(ctx))
		writeAppError(w, "Failed to tailor resume", err)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("response.tailored_length", len(result.TailoredResume)),
		attribute.Int("response.added_words", result.Diff.AddedWords),
		attribute.Int("response.removed_words", result.Diff.RemovedWords),
	)
	writeJSON(w, http.StatusOK, result)
}

// textTooLarge returns an error message when a request text exceeds half
// of the request size limit
func (s *Server) textTooLarge(field, text string) string {
	limit := s.MaxRequestSize / 2
	if limit <= 0 || int64(len(text)) <= limit {
		return ""
	}
	return fmt.Sprintf("%s exceeds size limit of %d bytes", field, limit)
}
