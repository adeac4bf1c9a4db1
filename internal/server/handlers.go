package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/auth"
	"github.com/agenthands/imgclass/internal/core"
	"github.com/agenthands/imgclass/internal/core/model"
	"github.com/agenthands/imgclass/internal/inference"
	"github.com/agenthands/imgclass/internal/store"
)

const healthTimeout = 2 * time.Second

// Predict handles POST /model/predict with a multipart "file" part.
func (s *Server) Predict(c *gin.Context) {
	limit := s.cfg.Server.MaxUploadBytes
	if c.Request.ContentLength > limit {
		s.fail(c, core.Reject(core.ErrTooLarge))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	img, err := readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	out, err := s.predictor.Predict(c.Request.Context(), img)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.observeSuccess(!out.Stored.Created, out.InferenceTook)
	if id, ok := auth.FromContext(c); ok {
		s.logger.Debug("Prediction served",
			zap.String("request_id", GetRequestID(c)),
			zap.String("subject", id.Subject),
			zap.String("image_file_name", out.Stored.Key.String()))
	}
	c.JSON(http.StatusOK, out.Response)
}

func readUpload(c *gin.Context) (model.UploadedImage, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.UploadedImage{}, core.Reject(core.ErrTooLarge)
		}
		return model.UploadedImage{}, core.Reject(core.ErrNoFile)
	}

	f, err := fh.Open()
	if err != nil {
		return model.UploadedImage{}, core.Reject(fmt.Errorf("failed to open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.UploadedImage{}, core.Reject(fmt.Errorf("failed to read upload: %w", err))
	}

	return model.UploadedImage{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// fail writes the default (null) prediction body with a status derived from err.
func (s *Server) fail(c *gin.Context, err error) {
	status, outcome, detail := classify(err)
	s.metrics.observeFailure(outcome)

	fields := []zap.Field{zap.String("request_id", GetRequestID(c)), zap.Int("status", status), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Prediction failed", fields...)
	} else {
		s.logger.Info("Prediction rejected", fields...)
	}
	c.JSON(status, model.FailedResponse(detail))
}

func classify(err error) (status int, outcome string, detail string) {
	var (
		clientErr    *core.ClientError
		storageErr   *store.StorageError
		inferenceErr *inference.InferenceError
	)
	switch {
	case errors.As(err, &clientErr):
		if errors.Is(err, core.ErrTooLarge) {
			return http.StatusRequestEntityTooLarge, outcomeRejected, clientErr.Error()
		}
		return http.StatusBadRequest, outcomeRejected, clientErr.Error()
	case errors.As(err, &inferenceErr):
		if errors.Is(err, inference.ErrTimeout) {
			return http.StatusGatewayTimeout, outcomeTimeout, "prediction timed out"
		}
		return http.StatusBadGateway, outcomeInferenceError, "prediction failed"
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, outcomeStorageError, "failed to store image"
	default:
		return http.StatusInternalServerError, outcomeInternalError, "internal error"
	}
}

// Health reports whether the inference backend is reachable, when the
// provider can tell.
func (s *Server) Health(c *gin.Context) {
	if p, ok := s.predictor.Inference.(inference.Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("Inference backend unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "detail": "inference backend unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
