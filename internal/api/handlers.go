package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/cache"
	"github.com/fashun/virtual-tryon/internal/landmarks"
	"github.com/fashun/virtual-tryon/internal/metrics"
	"github.com/fashun/virtual-tryon/internal/tryon"
)

// Response headers set on try-on results.
const (
	HeaderOutcome = "X-Tryon-Outcome"
	HeaderCache   = "X-Cache"
)

// Form field names.
const (
	fieldPhoto       = "photo"
	fieldGarment     = "garment"
	fieldGarmentType = "garmentType"
)

// Error messages returned to clients.
const (
	msgNoPhoto         = "No photo uploaded"
	msgNoGarment       = "No garment image provided"
	msgPoseFailed      = "Pose detection failed"
	msgTryOnFailed     = "Virtual try-on processing failed"
	msgUploadTooLarge  = "Upload too large"
	msgServerBusy      = "Server busy, try again later"
	msgTooManyRequests = "Too many requests"
)

// rejected aborts with a JSON error body and counts the rejection.
func rejected(c *gin.Context, status int, reason, msg string) {
	metrics.Rejections.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// readUpload returns the bytes of a multipart file field. On failure it has
// already written a 400 (field missing) or 413 (body too large) response.
func (s *Server) readUpload(c *gin.Context, field string, missing string) ([]byte, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rejected(c, http.StatusRequestEntityTooLarge, "too_large", msgUploadTooLarge)
			return nil, false
		}
		rejected(c, http.StatusBadRequest, "missing_field", missing)
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		s.logger.Error("failed to open uploaded file",
			zap.String("request_id", requestID(c)),
			zap.String("field", field),
			zap.Error(err),
		)
		rejected(c, http.StatusBadRequest, "missing_field", missing)
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Error("failed to read uploaded file",
			zap.String("request_id", requestID(c)),
			zap.String("field", field),
			zap.Error(err),
		)
		rejected(c, http.StatusBadRequest, "missing_field", missing)
		return nil, false
	}
	return data, true
}

func (s *Server) detectPose(c *gin.Context) {
	photo, ok := s.readUpload(c, fieldPhoto, msgNoPhoto)
	if !ok {
		return
	}

	if !s.acquire(c) {
		return
	}
	defer s.release()

	var set landmarks.Set
	err := s.runPipeline(c, "detect_pose", func() (err error) {
		set, err = s.pipeline.DetectPose(photo)
		return err
	})
	if err != nil {
		s.logger.Error("pose detection failed",
			zap.String("request_id", requestID(c)),
			zap.Int("photo_bytes", len(photo)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgPoseFailed})
		return
	}

	metrics.LandmarkSources.WithLabelValues(string(set.Source)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"landmarks": set,
		"detected":  true,
	})
}

func (s *Server) virtualTryOn(c *gin.Context) {
	photo, ok := s.readUpload(c, fieldPhoto, msgNoPhoto)
	if !ok {
		return
	}
	garment, ok := s.readUpload(c, fieldGarment, msgNoGarment)
	if !ok {
		return
	}

	rawType := c.DefaultPostForm(fieldGarmentType, string(tryon.DefaultGarmentType))
	garmentType := tryon.ParseGarmentType(rawType)
	log := s.logger.With(
		zap.String("request_id", requestID(c)),
		zap.Stringer("garment_type", garmentType),
	)
	log.Info("processing virtual try-on", zap.String("requested_type", rawType))

	key := cache.Key(photo, garment, garmentType.String(), s.pipeline.Fingerprint())
	if entry := s.cachedRender(c, key, log); entry != nil {
		c.Header(HeaderOutcome, entry.Outcome)
		c.Header(HeaderCache, "HIT")
		c.Data(http.StatusOK, "image/png", entry.PNG)
		return
	}

	if !s.acquire(c) {
		return
	}
	defer s.release()

	var out *tryon.Output
	err := s.runPipeline(c, "virtual_tryon", func() (err error) {
		out, err = s.pipeline.TryOn(photo, garment, rawType)
		return err
	})
	if err != nil {
		log.Error("virtual try-on failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgTryOnFailed})
		return
	}

	metrics.TryOnOutcomes.WithLabelValues(out.GarmentType.String(), out.Outcome.String()).Inc()
	if out.Landmarks.Source != "" {
		metrics.LandmarkSources.WithLabelValues(string(out.Landmarks.Source)).Inc()
	}

	if out.Outcome == tryon.OutcomeDegraded {
		log.Warn("try-on degraded to original image", zap.Error(out.Err))
	} else {
		s.storeRender(c, key, out, log)
	}

	c.Header(HeaderOutcome, out.Outcome.String())
	c.Header(HeaderCache, "MISS")
	c.Data(http.StatusOK, "image/png", out.PNG)
}

// runPipeline runs fn under the active gauge and duration histogram. A panic
// in fn comes back as an error so the caller answers with its own message.
func (s *Server) runPipeline(c *gin.Context, op string, fn func() error) (err error) {
	metrics.PipelineActive.Inc()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pipeline panicked",
				zap.String("request_id", requestID(c)),
				zap.String("operation", op),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("%s panicked: %v", op, r)
		}
		metrics.PipelineDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.PipelineActive.Dec()
	}()
	return fn()
}

func (s *Server) cachedRender(c *gin.Context, key string, log *zap.Logger) *cache.Entry {
	if s.cache == nil {
		return nil
	}
	entry, err := s.cache.Get(c.Request.Context(), key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		log.Warn("failed to get cache", zap.Error(err))
		return nil
	case entry == nil:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		log.Info("cache hit", zap.String("cache_key", key))
		return entry
	}
}

func (s *Server) storeRender(c *gin.Context, key string, out *tryon.Output, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	entry := &cache.Entry{
		PNG:     out.PNG,
		Outcome: out.Outcome.String(),
		Width:   out.Width,
		Height:  out.Height,
	}
	if err := s.cache.Set(c.Request.Context(), key, entry); err != nil {
		log.Warn("failed to set cache", zap.Error(err))
	}
}
