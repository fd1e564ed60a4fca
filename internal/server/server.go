// Package server exposes the webhook endpoint. Payload signature
// validation is assumed to happen upstream (reverse proxy or platform);
// this layer only decodes events and maps dispatch outcomes to HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v57/github"

	"github.com/ubiquity-os/onboarding-bot/internal/dispatch"
	gh "github.com/ubiquity-os/onboarding-bot/internal/github"
)

// Dispatcher is the event-handling surface the server invokes
type Dispatcher interface {
	HandleIssueComment(ctx context.Context, ev *dispatch.CommentEvent) error
	HandleIssueLabeled(ctx context.Context, ev *dispatch.LabelEvent) error
}

// Server handles inbound webhook deliveries
type Server struct {
	dispatcher Dispatcher
	actingUser string
	logger     *slog.Logger
}

// New creates a webhook server. actingUser is the login the user token
// belongs to; it rides along on comment events for command matching.
func New(dispatcher Dispatcher, actingUser string, logger *slog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		actingUser: actingUser,
		logger:     logger,
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

// HandleWebhook decodes a webhook delivery and dispatches it. Events and
// actions outside the bot's scope are acknowledged with 202 untouched.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_payload", "failed to read payload")
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_payload", "failed to parse payload")
		return
	}

	switch e := payload.(type) {
	case *github.IssueCommentEvent:
		if action := e.GetAction(); action != "created" && action != "edited" {
			s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
			return
		}

		ev := &dispatch.CommentEvent{
			Actor:      e.GetSender().GetLogin(),
			ActingUser: s.actingUser,
			Issue:      issueRef(e.GetRepo(), e.GetIssue().GetNumber()),
			Body:       e.GetComment().GetBody(),
		}
		s.writeDispatchResult(w, s.dispatcher.HandleIssueComment(r.Context(), ev))

	case *github.IssuesEvent:
		if e.GetAction() != "labeled" {
			s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
			return
		}

		ev := &dispatch.LabelEvent{
			Actor: e.GetSender().GetLogin(),
			Issue: issueRef(e.GetRepo(), e.GetIssue().GetNumber()),
			Label: e.GetLabel().GetName(),
		}
		s.writeDispatchResult(w, s.dispatcher.HandleIssueLabeled(r.Context(), ev))

	default:
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
	}
}

func (s *Server) writeDispatchResult(w http.ResponseWriter, err error) {
	if err == nil {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	var authErr *dispatch.AuthorizationError
	if errors.As(err, &authErr) {
		s.writeError(w, http.StatusForbidden, "authorization_denied", authErr.Error())
		return
	}

	if gh.IsRateLimit(err) {
		s.logger.Error("dispatch rate limited", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "rate_limited", "upstream API rate limit hit, redeliver later")
		return
	}

	s.logger.Error("dispatch failed", "error", err)
	s.writeError(w, http.StatusInternalServerError, "dispatch_failed", "internal server error")
}

// HealthCheck answers liveness probes
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func issueRef(repo *github.Repository, number int) gh.IssueRef {
	return gh.IssueRef{
		Repository: gh.RepositoryRef{
			Owner: repo.GetOwner().GetLogin(),
			Name:  repo.GetName(),
		},
		Number: number,
	}
}
