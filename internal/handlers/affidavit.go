package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/pdfform"
	"github.com/jjenkins/servetrack/internal/service"
)

// AffidavitGenerator produces the affidavit for a stored case
type AffidavitGenerator interface {
	Generate(ctx context.Context, caseID string, opts service.GenerateOptions) (*affidavit.Result, error)
}

// FieldInspector lists the form fields of a template
type FieldInspector interface {
	Inspect(ctx context.Context, location string) ([]pdfform.FieldInfo, error)
}

func AffidavitHandler(gen AffidavitGenerator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caseID := c.Params("id")

		res, err := gen.Generate(c.UserContext(), caseID, service.GenerateOptions{
			ServiceAddress: c.Query("address"),
		})
		if err != nil {
			var loadErr *pdfform.LoadError
			var emitErr *affidavit.EmitError
			if errors.As(err, &loadErr) || errors.As(err, &emitErr) {
				logger.Error("affidavit generation failed", zap.String("case_id", caseID), zap.Error(err))
			}
			return sendError(c, err)
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
		return c.Send(res.PDF)
	}
}

type fieldsResponse struct {
	Location string              `json:"location"`
	Fields   []pdfform.FieldInfo `json:"fields"`
	Resolved map[string]string   `json:"resolved"`
}

// TemplateFieldsHandler lists the template's fields and which logical value
// each one would receive.
func TemplateFieldsHandler(inspector FieldInspector, location string, fields affidavit.FieldMap) fiber.Handler {
	return func(c *fiber.Ctx) error {
		infos, err := inspector.Inspect(c.UserContext(), location)
		if err != nil {
			return sendError(c, err)
		}

		return c.JSON(fieldsResponse{
			Location: location,
			Fields:   infos,
			Resolved: fields.Match(fieldNames(infos)),
		})
	}
}

func fieldNames(infos []pdfform.FieldInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}
