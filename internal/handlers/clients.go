package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/normalize"
)

// ClientStore is the client persistence the handlers need
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
}

// decodeRaw parses a JSON object body in either naming convention
func decodeRaw(c *fiber.Ctx) (normalize.Raw, error) {
	var raw normalize.Raw
	if err := json.Unmarshal(c.Body(), &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", errBadRequest)
	}
	return raw, nil
}

// newID drops the placeholder id so the store assigns one
func newID(id string) string {
	if id == normalize.UnknownID {
		return ""
	}
	return id
}

func ListClientsHandler(clients ClientStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := clients.List(c.UserContext())
		if err != nil {
			return sendError(c, err)
		}

		out := make([]normalize.Raw, len(list))
		for i, cl := range list {
			out[i] = normalize.ClientRaw(cl)
		}
		return c.JSON(out)
	}
}

func CreateClientHandler(clients ClientStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := decodeRaw(c)
		if err != nil {
			return sendError(c, err)
		}

		client := normalize.Client(raw)
		client.ID = newID(client.ID)
		if client.Name == "" {
			return sendError(c, fmt.Errorf("%w: name is required", errBadRequest))
		}

		if err := clients.Create(c.UserContext(), &client); err != nil {
			return sendError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(normalize.ClientRaw(client))
	}
}

func GetClientHandler(clients ClientStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, err := clients.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(normalize.ClientRaw(*client))
	}
}

func ListClientCasesHandler(clients ClientStore, cases CaseStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		client, err := clients.GetByID(ctx, c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}

		list, err := cases.ListByClient(ctx, client.ID)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(caseList(list))
	}
}
