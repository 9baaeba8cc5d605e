package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/normalize"
)

// CaseStore is the case persistence the handlers need
type CaseStore interface {
	Create(ctx context.Context, c *model.Case) error
	GetByID(ctx context.Context, id string) (*model.Case, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Case, error)
	List(ctx context.Context) ([]model.Case, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

func caseList(list []model.Case) []normalize.Raw {
	out := make([]normalize.Raw, len(list))
	for i, kase := range list {
		out[i] = normalize.CaseRaw(kase)
	}
	return out
}

func CreateCaseHandler(clients ClientStore, cases CaseStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		raw, err := decodeRaw(c)
		if err != nil {
			return sendError(c, err)
		}

		kase := normalize.Case(raw)
		kase.ID = newID(kase.ID)
		if kase.ClientID == "" {
			return sendError(c, fmt.Errorf("%w: clientId is required", errBadRequest))
		}
		if _, err := clients.GetByID(ctx, kase.ClientID); err != nil {
			return sendError(c, err)
		}

		if err := cases.Create(ctx, &kase); err != nil {
			return sendError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(normalize.CaseRaw(kase))
	}
}

func GetCaseHandler(cases CaseStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kase, err := cases.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(normalize.CaseRaw(*kase))
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func UpdateCaseStatusHandler(cases CaseStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var req statusRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return sendError(c, fmt.Errorf("%w: body must be a JSON object", errBadRequest))
		}
		status := strings.ToLower(strings.TrimSpace(req.Status))
		if status != model.CaseStatusOpen && status != model.CaseStatusClosed {
			return sendError(c, fmt.Errorf("%w: status must be %q or %q", errBadRequest, model.CaseStatusOpen, model.CaseStatusClosed))
		}

		id := c.Params("id")
		if err := cases.UpdateStatus(ctx, id, status); err != nil {
			return sendError(c, err)
		}

		kase, err := cases.GetByID(ctx, id)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(normalize.CaseRaw(*kase))
	}
}
