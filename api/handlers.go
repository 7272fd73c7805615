package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/saorihq/saori/api/ask"
	"github.com/saorihq/saori/pkg/corpus"
	"github.com/saorihq/saori/pkg/engine"
	"github.com/saorihq/saori/pkg/retriever"
	"github.com/saorihq/saori/pkg/vector"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DocumentSummary is one corpus entry in the documents listing.
type DocumentSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Chars   int    `json:"chars"`
	AddedAt string `json:"added_at"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAnswer answers a question over the corpus.
// Query params: query (required), test_mode (bool), k (int).
func (s *Server) handleAnswer(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query parameter required"})
	}

	req := ask.Request{
		Query:    query,
		TopK:     c.QueryInt("k"),
		TestMode: c.QueryBool("test_mode"),
	}

	resp, err := ask.Ask(c.Context(), req, s.engine, s.logger)
	if err != nil {
		return s.answerError(c, err)
	}

	return c.JSON(resp)
}

// answerError maps answer-path failures to HTTP statuses.
func (s *Server) answerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, engine.ErrEmptyQuery), errors.Is(err, retriever.ErrConfig):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, vector.ErrEmptyIndex):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "no documents ingested yet"})

	default:
		s.logger.Error("answering query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to answer query"})
	}
}

// handleReprocess rebuilds the index from the full corpus.
func (s *Server) handleReprocess(c *fiber.Ctx) error {
	if err := s.engine.ReprocessAll(c.Context()); err != nil {
		s.logger.Error("reprocessing corpus", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to reprocess corpus"})
	}

	return c.JSON(map[string]string{"status": "reprocessed"})
}

// handleRemoveDocument deletes a document from the corpus by ID. The index
// keeps serving the old segments until the next reprocess.
func (s *Server) handleRemoveDocument(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.engine.Remove(c.Context(), id); err != nil {
		if errors.Is(err, corpus.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
		}
		s.logger.Error("removing document", zap.Error(err), zap.String("id", id))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to remove document"})
	}

	return c.JSON(map[string]string{"status": "removed", "id": id})
}

// handleListDocuments returns the corpus contents, ordered by name.
func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	docs, err := s.engine.Documents(c.Context())
	if err != nil {
		s.logger.Error("listing documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list documents"})
	}

	summaries := make([]DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = DocumentSummary{
			ID:      doc.ID,
			Name:    doc.Name,
			Chars:   len(doc.Text),
			AddedAt: doc.AddedAt.UTC().Format(time.RFC3339),
		}
	}

	return c.JSON(map[string]any{
		"count":     len(summaries),
		"documents": summaries,
	})
}
