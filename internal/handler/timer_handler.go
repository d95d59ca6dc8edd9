package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/proctorly/exam-api/internal/models"
	"github.com/proctorly/exam-api/internal/service"
)

// TimerHandler streams the remaining attempt time over a websocket so
// clients can render a countdown without polling.
type TimerHandler struct {
	attempts service.AttemptService
	logger   zerolog.Logger
}

// TimerTick is a single countdown frame pushed to the client.
type TimerTick struct {
	AttemptID        uint   `json:"attempt_id"`
	Status           string `json:"status"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// NewTimerHandler builds a timer handler instance.
func NewTimerHandler(attempts service.AttemptService, logger zerolog.Logger) *TimerHandler {
	return &TimerHandler{
		attempts: attempts,
		logger:   logger.With().Str("component", "timer_handler").Logger(),
	}
}

// Register attaches the websocket countdown route to the protected
// router group.
func (h *TimerHandler) Register(router fiber.Router) {
	router.Use("/:id/timer", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/timer", websocket.New(h.handleConnection))
}

func (h *TimerHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	attemptID, err := strconv.ParseUint(conn.Params("id"), 10, 64)
	if err != nil {
		h.writeClose(conn, websocket.ClosePolicyViolation, "invalid attempt id")
		return
	}

	studentID, ok := conn.Locals("student_id").(uint)
	if !ok {
		h.writeClose(conn, websocket.ClosePolicyViolation, "unauthenticated")
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		remaining, status, err := h.attempts.TimeRemaining(context.Background(), uint(attemptID), studentID)
		if err != nil {
			if !errors.Is(err, service.ErrAttemptNotFound) {
				h.logger.Warn().Err(err).Uint64("attempt_id", attemptID).Msg("countdown lookup failed")
			}
			h.writeClose(conn, websocket.CloseNormalClosure, "attempt unavailable")
			return
		}

		tick := TimerTick{
			AttemptID:        uint(attemptID),
			Status:           status,
			RemainingSeconds: int(remaining / time.Second),
		}
		if err := conn.WriteJSON(tick); err != nil {
			return
		}

		if status != models.AttemptStatusInProgress || remaining <= 0 {
			h.writeClose(conn, websocket.CloseNormalClosure, "attempt over")
			return
		}

		<-ticker.C
	}
}

func (h *TimerHandler) writeClose(conn *websocket.Conn, code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
}
