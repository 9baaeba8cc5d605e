package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/normalize"
)

// ServeStore is the serve attempt persistence the handlers need
type ServeStore interface {
	Create(ctx context.Context, s *model.Serve) error
	GetByID(ctx context.Context, id string) (*model.Serve, error)
	ListByCase(ctx context.Context, caseID string) ([]model.Serve, error)
	UpdateNotes(ctx context.Context, id, notes, status string) error
}

func ListCaseServesHandler(cases CaseStore, serves ServeStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		kase, err := cases.GetByID(ctx, c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}

		list, err := serves.ListByCase(ctx, kase.ID)
		if err != nil {
			return sendError(c, err)
		}

		sorted := affidavit.SortAttempts(list)
		out := make([]normalize.Raw, len(sorted))
		for i, s := range sorted {
			out[i] = normalize.ServeRaw(s)
		}
		return c.JSON(out)
	}
}

func CreateServeHandler(cases CaseStore, serves ServeStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		kase, err := cases.GetByID(ctx, c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}

		raw, err := decodeRaw(c)
		if err != nil {
			return sendError(c, err)
		}

		serve := normalize.Serve(raw)
		serve.ID = newID(serve.ID)
		serve.CaseID = kase.ID
		serve.ClientID = kase.ClientID

		if err := serves.Create(ctx, &serve); err != nil {
			return sendError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(normalize.ServeRaw(serve))
	}
}

type updateServeRequest struct {
	Notes  *string `json:"notes"`
	Status string  `json:"status"`
}

// UpdateServeHandler changes an attempt's notes and status; nothing else about
// a recorded attempt is editable.
func UpdateServeHandler(serves ServeStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")

		var req updateServeRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return sendError(c, fmt.Errorf("%w: body must be a JSON object", errBadRequest))
		}

		existing, err := serves.GetByID(ctx, id)
		if err != nil {
			return sendError(c, err)
		}

		notes := existing.Notes
		if req.Notes != nil {
			notes = *req.Notes
		}
		var status string
		if req.Status != "" {
			status = normalize.ServeStatus(req.Status)
		}

		if err := serves.UpdateNotes(ctx, id, notes, status); err != nil {
			return sendError(c, err)
		}

		updated, err := serves.GetByID(ctx, id)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(normalize.ServeRaw(*updated))
	}
}
