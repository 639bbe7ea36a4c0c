package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deforest-api/internal/predict"
	"deforest-api/internal/transport/http/middleware"
	resp "deforest-api/internal/transport/http/response"
)

// PredictHandler fronts the external ML inference service. It is a
// collaborator boundary: requests time out instead of hanging and failures
// come back as 503, never as a stuck connection.
type PredictHandler struct {
	client *predict.Client
	log    *zap.Logger
}

func NewPredictHandler(client *predict.Client, log *zap.Logger) *PredictHandler {
	return &PredictHandler{client: client, log: log}
}

// GET /api/dashboard
func (h *PredictHandler) Dashboard(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	c.JSON(http.StatusOK, resp.OK("Welcome to the dashboard!").With("user", gin.H{
		"email":    claims.Email,
		"username": claims.Username,
		"role":     claims.Role,
	}))
}

// POST /api/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, resp.Fail("No file uploaded"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("open upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error during prediction. Please try again."))
		return
	}
	defer f.Close()

	res, err := h.client.Predict(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if errors.Is(err, predict.ErrServiceUnavailable) {
		h.log.Error("model service unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, resp.Fail("Unable to connect to model service"))
		return
	}
	if err != nil {
		h.log.Error("predict proxy failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error during prediction. Please try again."))
		return
	}
	if res.StatusCode != http.StatusOK {
		msg, _ := res.Raw["error"].(string)
		if msg == "" {
			msg = "Prediction failed"
		}
		c.JSON(res.StatusCode, resp.Fail(msg))
		return
	}

	// merge the model output with the requesting identity
	out := resp.OK("")
	for k, v := range res.Raw {
		out[k] = v
	}
	out.With("user", gin.H{
		"email":    claims.Email,
		"username": claims.Username,
	}).With("timestamp", time.Now().UTC().Format(time.RFC3339))
	c.JSON(http.StatusOK, out)
}

// GET /api/model-status
func (h *PredictHandler) ModelStatus(c *gin.Context) {
	health, err := h.client.Health(c.Request.Context())
	if err != nil {
		h.log.Warn("model service health probe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable,
			resp.Fail("Unable to connect to model service").
				With("modelService", gin.H{"status": "unavailable"}))
		return
	}
	c.JSON(http.StatusOK, resp.OK("").With("modelService", health))
}
