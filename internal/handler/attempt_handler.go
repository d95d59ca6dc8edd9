package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/dto"
	"github.com/proctorly/exam-api/internal/service"
	"github.com/proctorly/exam-api/internal/utils"
)

// AttemptHandler serves the attempt lifecycle: taking view, answer
// submission, finalization and result review.
type AttemptHandler struct {
	attempts service.AttemptService
	answers  service.AnswerService
	logger   zerolog.Logger
}

// NewAttemptHandler builds an attempt handler instance.
func NewAttemptHandler(attempts service.AttemptService, answers service.AnswerService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		answers:  answers,
		logger:   logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches attempt routes to the protected router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Get("/", h.history)
	router.Get("/:id", h.get)
	router.Put("/answers/:id", h.recordAnswer)
	router.Post("/:id/finish", h.finish)
	router.Get("/:id/result", h.result)
}

func (h *AttemptHandler) history(c *fiber.Ctx) error {
	summaries, err := h.attempts.History(c.Context(), studentIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempts retrieved", summaries)
}

// get serves the live taking view. A sealed attempt is no longer
// takeable, so the response carries its result instead.
func (h *AttemptHandler) get(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := studentIDFromContext(c)
	attempt, err := h.attempts.Get(c.Context(), attemptID, studentID)
	if errors.Is(err, service.ErrAttemptSealed) {
		result, resultErr := h.attempts.Result(c.Context(), attemptID, studentID)
		if resultErr != nil {
			return h.handleError(c, resultErr)
		}
		return utils.SendSuccess(c, "attempt already finished", result)
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt retrieved", attempt)
}

func (h *AttemptHandler) recordAnswer(c *fiber.Ctx) error {
	answerID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RecordAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.answers.Record(c.Context(), answerID, studentIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer recorded", response)
}

func (h *AttemptHandler) finish(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.attempts.Finish(c.Context(), attemptID, studentIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt finished", result)
}

func (h *AttemptHandler) result(c *fiber.Ctx) error {
	attemptID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.attempts.Result(c.Context(), attemptID, studentIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *AttemptHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "attempt not found")
	case errors.Is(err, service.ErrAnswerNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "answer not found")
	case errors.Is(err, service.ErrAttemptNotActive):
		return utils.SendError(c, fiber.StatusConflict, "attempt is not active")
	case errors.Is(err, service.ErrAttemptExpired):
		return utils.SendError(c, fiber.StatusGone, "attempt time has expired")
	case errors.Is(err, service.ErrAttemptStillInProgress):
		return utils.SendError(c, fiber.StatusConflict, "attempt is still in progress")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
