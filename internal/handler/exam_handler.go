package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/service"
	"github.com/proctorly/exam-api/internal/utils"
)

// ExamHandler serves the exam catalogue for the signed-in student.
type ExamHandler struct {
	exams    service.ExamService
	attempts service.AttemptService
	logger   zerolog.Logger
}

// NewExamHandler builds an exam handler instance.
func NewExamHandler(exams service.ExamService, attempts service.AttemptService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		exams:    exams,
		attempts: attempts,
		logger:   logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam routes to the protected router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/:id/start", h.start)
}

func (h *ExamHandler) list(c *fiber.Ctx) error {
	exams, err := h.exams.ListEligible(c.Context(), studentIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exams retrieved", exams)
}

func (h *ExamHandler) start(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempt, err := h.attempts.Start(c.Context(), examID, studentIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt started", attempt)
}

func (h *ExamHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exam not found")
	case errors.Is(err, service.ErrExamNotOpen):
		return utils.SendError(c, fiber.StatusForbidden, "exam is not open")
	case errors.Is(err, service.ErrAttemptsExhausted):
		return utils.SendError(c, fiber.StatusConflict, "no attempts remaining")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
