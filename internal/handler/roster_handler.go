package handler

import (
	"crypto/subtle"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/service"
	"github.com/proctorly/exam-api/internal/utils"
)

// RosterHandler accepts CSV roster uploads from course staff.
type RosterHandler struct {
	roster     service.RosterService
	adminToken string
	logger     zerolog.Logger
}

// NewRosterHandler builds a roster handler instance.
func NewRosterHandler(roster service.RosterService, adminToken string, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		roster:     roster,
		adminToken: adminToken,
		logger:     logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register attaches the roster import route.
func (h *RosterHandler) Register(router fiber.Router) {
	router.Post("/import", h.importRoster)
}

func (h *RosterHandler) importRoster(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid admin token")
	}

	fileHeader, err := c.FormFile("roster")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "roster file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to open roster file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read roster file")
	}

	report, err := h.roster.Import(c.Context(), data)
	if err != nil {
		if errors.Is(err, service.ErrRosterFormat) {
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		h.logger.Error().Err(err).Msg("roster import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "roster imported", report)
}

func (h *RosterHandler) authorized(c *fiber.Ctx) bool {
	if h.adminToken == "" {
		return false
	}
	provided := c.Get("X-Admin-Token")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.adminToken)) == 1
}
