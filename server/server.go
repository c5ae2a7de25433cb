// Package server 提供单张图片的预览接口，方便调阈值时直接看效果。
package server

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chaos-io/pixelprep/pixel"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderResult    = "X-Pixelprep-Result"
	// FormField 上传图片的表单字段名
	FormField = "image"

	resultNoContent = "no-content"
	maxUploadMemory = 32 << 20
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Config pixel.Config
	// MaxSize /v1/process 的最长边上限，0 表示不缩放
	MaxSize int
}

type Server struct {
	opts   Options
	engine *gin.Engine
}

func New(opts Options) *Server {
	s := &Server{opts: opts}

	r := gin.New()
	r.MaxMultipartMemory = maxUploadMemory
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/remove-background", s.handle(true, false))
	v1.POST("/crop", s.handle(false, true))
	v1.POST("/process", s.handle(true, true))

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听 addr 直到 ctx 结束，然后优雅退出
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handle(removeBackground, crop bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, maxSize, err := s.requestConfig(c)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}

		img, err := readUpload(c)
		if err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
		if removeBackground {
			if img, err = pixel.NewThresholdRemover(cfg).Remove(c.Request.Context(), img); err != nil {
				abort(c, http.StatusInternalServerError, err)
				return
			}
		}

		work := pixel.ToNRGBA(img)
		if crop {
			cropped, ok := pixel.CropToContent(work, cfg.Padding)
			if !ok {
				c.Header(HeaderResult, resultNoContent)
				c.Status(http.StatusNoContent)
				return
			}
			work = cropped
		}

		if removeBackground && crop {
			work = pixel.FitWithin(work, maxSize)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, work); err != nil {
			abort(c, http.StatusInternalServerError, errors.Wrap(err, "png encode"))
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

// requestConfig 在服务配置的基础上应用查询参数覆盖
func (s *Server) requestConfig(c *gin.Context) (pixel.Config, int, error) {
	cfg := s.opts.Config
	maxSize := s.opts.MaxSize

	overrides := []struct {
		name string
		dst  *int
	}{
		{"padding", &cfg.Padding},
		{"black_threshold", &cfg.BlackThreshold},
		{"max_size", &maxSize},
	}
	for _, o := range overrides {
		raw, ok := c.GetQuery(o.name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, 0, errors.Errorf("invalid %s %q", o.name, raw)
		}
		*o.dst = v
	}

	if maxSize < 0 {
		return cfg, 0, errors.Errorf("invalid max_size %d", maxSize)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, 0, err
	}
	return cfg, maxSize, nil
}

func readUpload(c *gin.Context) (image.Image, error) {
	fh, err := c.FormFile(FormField)
	if err != nil {
		return nil, errors.Wrapf(err, "missing form field %q", FormField)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", fh.Filename)
	}
	return img, nil
}

func abort(c *gin.Context, code int, err error) {
	slog.Warn("request failed", "path", c.FullPath(), "status", code, "error", err,
		"request_id", c.GetString(HeaderRequestID))
	c.AbortWithStatusJSON(code, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString(HeaderRequestID),
	})
}

// requestID 沿用调用方传入的 X-Request-Id，没有则生成 ksuid
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = ksuid.New().String()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "elapsed", time.Since(start),
			"request_id", c.GetString(HeaderRequestID))
	}
}
