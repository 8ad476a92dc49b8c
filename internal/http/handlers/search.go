package handlers

import (
	"log/slog"
	"strings"

	"github.com/gabriel/bigfinish-metadata/internal/connectors"
	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	registry *connectors.Registry
	logger   *slog.Logger
}

func NewSearchHandler(registry *connectors.Registry, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{registry: registry, logger: logger}
}

// Search answers GET /search?query=&author=&source=. source picks a registered
// connector by key, host or page URL and defaults to the first one registered.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter is required"})
	}
	author := strings.TrimSpace(c.Query("author"))

	connector, ok := h.resolveConnector(c.Query("source"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown source"})
	}

	h.logger.Info("search request", "query", query, "author", author, "source", connector.Key())

	matches, err := connector.Search(c.UserContext(), query, author)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []connectors.MetadataRecord{}
	}

	return c.JSON(fiber.Map{"matches": matches})
}

func (h *SearchHandler) resolveConnector(source string) (connectors.Connector, bool) {
	if strings.TrimSpace(source) == "" {
		return h.registry.Default()
	}
	return h.registry.Get(source)
}
