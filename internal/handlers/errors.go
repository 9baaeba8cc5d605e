package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/store"
)

// errBadRequest marks a malformed or incomplete request body
var errBadRequest = errors.New("bad request")

// statusFor maps an error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrDuplicateCaseNumber), errors.Is(err, store.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, affidavit.ErrEmptyInput), errors.Is(err, errBadRequest):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
