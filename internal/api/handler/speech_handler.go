package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/voxgate/tts-gateway/internal/core/domain"
	"github.com/voxgate/tts-gateway/internal/core/ports"
)

const (
	headerRemainingCredits = "X-Remaining-Credits"
	mimeAudioMPEG          = "audio/mpeg"
)

// SpeechHandler handles synthesis requests.
type SpeechHandler struct {
	service ports.SpeechService
}

func NewSpeechHandler(service ports.SpeechService) *SpeechHandler {
	return &SpeechHandler{service: service}
}

// Speak synthesizes text into MP3 audio, subject to the daily quota.
//
// @Summary      Synthesize speech
// @Description  Consumes one daily credit when available. With ad_proof_token set, an exhausted quota is bypassed without consuming a credit.
// @Tags         speech
// @Accept       json
// @Produce      audio/mpeg
// @Param        body  body      speakRequest  true  "Synthesis request"
// @Success      200   {file}    binary
// @Header       200   {integer} X-Remaining-Credits  "Credits left today"
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /speak [post]
func (h *SpeechHandler) Speak(c echo.Context) error {
	var req speakRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	res, err := h.service.Speak(c.Request().Context(), ports.SpeakInput{
		UID:          req.UID,
		Text:         req.Text,
		Voice:        req.Voice,
		Mood:         req.Mood,
		AdProofToken: req.AdProofToken,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(headerRemainingCredits, strconv.Itoa(res.RemainingAfter))
	return c.Blob(http.StatusOK, mimeAudioMPEG, res.Audio)
}
