package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/poiesic/inquiro/core"
	"github.com/poiesic/inquiro/flow"
)

// failureAnswer is returned to the user when a run fails; details stay in
// the server log.
const failureAnswer = "Sorry, I encountered an error processing your question."

// ChatRequest is the request body for POST /chat.
type ChatRequest struct {
	// SessionID identifies the conversation. Empty starts a new session.
	SessionID string `json:"session_id"`
	// Message is the user's question.
	Message string `json:"message"`
}

// ChatResponse is the response body for POST /chat.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	// NeedsClarification reports that the answer is provisional because the
	// question is still ambiguous; the client should re-ask with more detail.
	NeedsClarification bool `json:"needs_clarification"`
	// ClarifiedQuestion is the question the pipeline actually answered, when
	// it differs from the one asked.
	ClarifiedQuestion string `json:"clarified_question,omitempty"`
}

func (s *Server) handleHealthcheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := c.UserContext()

	history, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		s.logger.Error("error loading session history", "session", sessionID, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "session history unavailable",
		})
	}

	final, err := s.runner.Run(ctx, flow.State{
		SessionID:        sessionID,
		ChatHistory:      history,
		OriginalQuestion: req.Message,
	})

	answer := failureAnswer
	resp := ChatResponse{SessionID: sessionID}
	if err != nil {
		s.logger.Error("pipeline run failed", "session", sessionID, "err", err)
	} else {
		answer = final.Answer()
		resp.NeedsClarification = final.NeedsClarification
		if final.ClarifiedQuestion != "" && final.ClarifiedQuestion != req.Message {
			resp.ClarifiedQuestion = final.ClarifiedQuestion
		}
	}
	resp.Answer = answer

	s.appendHistory(ctx, sessionID, history,
		core.Turn{Sender: core.SenderUser, Message: req.Message},
		core.Turn{Sender: core.SenderBot, Message: answer},
	)

	return c.JSON(resp)
}

// loadHistory returns the session's turns, consulting the in-memory cache
// before the repository.
func (s *Server) loadHistory(ctx context.Context, sessionID string) ([]core.Turn, error) {
	if cached, found := s.cache.Get(sessionID); found {
		return cached.([]core.Turn), nil
	}

	history, err := s.sessions.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(sessionID, history, cache.DefaultExpiration)
	return history, nil
}

// appendHistory persists new turns and refreshes the cache. Persistence
// failures are logged; the conversation continues from the cached copy.
func (s *Server) appendHistory(ctx context.Context, sessionID string, history []core.Turn, turns ...core.Turn) {
	if err := s.sessions.AppendTurns(ctx, sessionID, turns...); err != nil {
		s.logger.Error("error persisting session turns", "session", sessionID, "err", err)
	}

	// The history slice may still be shared with the cache, so appending in
	// place could clobber another request's view of the same session. Always
	// build a fresh backing array.
	updated := make([]core.Turn, 0, len(history)+len(turns))
	updated = append(updated, history...)
	updated = append(updated, turns...)
	s.cache.Set(sessionID, updated, cache.DefaultExpiration)
}
