package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"remember_galleries/internal/config"
	"remember_galleries/internal/lib/jwt"
	appmiddleware "remember_galleries/internal/middleware"
	httprouters "remember_galleries/internal/transport/http"
	"remember_galleries/internal/transport/http/dto/response"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	cfg     Config
}

// Config параметры HTTP-слоя, собранные из общего конфига
type Config struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	TokenSecret   string
	SessionSecret string
	UploadsDir    string
	SearchRate    float64
	SearchBurst   int
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Host:          cfg.HTTP.Host,
		Port:          cfg.HTTP.Port,
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		IdleTimeout:   cfg.HTTP.IdleTimeout,
		TokenSecret:   cfg.Auth.Secret,
		SessionSecret: cfg.Auth.SessionSecret,
		UploadsDir:    cfg.FileStorage.BaseDir,
		SearchRate:    cfg.Search.RateLimit,
		SearchBurst:   cfg.Search.Burst,
	}
}

func New(log *slog.Logger, cfg Config, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Server.IdleTimeout = cfg.IdleTimeout

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}
	e.HTTPErrorHandler = envelopeErrorHandler(log)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)

			return nil
		},
	}))

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		cfg:     cfg,
	}
}

// Handler отдает echo для тестов через httptest
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("port", s.cfg.Port))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"status": "ok"}))
	})
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if s.cfg.UploadsDir != "" {
		s.e.Static("/uploads", s.cfg.UploadsDir)
	}

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(s.cfg.TokenSecret),
		ContextKey: appmiddleware.ContextKey,
		NewClaimsFunc: func(c echo.Context) gojwt.Claims {
			return new(jwt.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
	}))

	editGalleries := appmiddleware.RequireCapability(jwt.CapEditGalleries)
	uploadFiles := appmiddleware.RequireCapability(jwt.CapUploadFiles)

	galleries := api.Group("/galleries", editGalleries)
	{
		galleries.POST("/search", s.routers.SearchGalleries, s.searchRateLimiter())
		galleries.POST("/save", s.routers.SaveGallery)
		galleries.GET("", s.routers.ListGalleries)
		galleries.GET("/:id", s.routers.GetGallery)
		galleries.POST("/:id/trash", s.routers.TrashGallery)
		galleries.POST("/:id/restore", s.routers.RestoreGallery)
	}

	attachments := api.Group("/attachments", uploadFiles)
	{
		attachments.POST("/query", s.routers.QueryAttachments)
		attachments.POST("", s.routers.UploadAttachment)
	}

	api.POST("/shortcodes/expand", s.routers.ExpandShortcodes, editGalleries)

	drafts := api.Group("/drafts", editGalleries)
	{
		drafts.GET("", s.routers.GetDraft)
		drafts.PUT("", s.routers.SaveDraft)
		drafts.DELETE("", s.routers.DeleteDraft)
	}
}

// searchRateLimiter ограничивает поиск по каждому редактору: виджет шлет
// запрос на каждое нажатие клавиши
func (s *Server) searchRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.cfg.SearchRate),
			Burst:     s.cfg.SearchBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if claims, ok := appmiddleware.ClaimsFromContext(c); ok && claims.Subject != "" {
				return claims.Subject, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, response.ErrorResponse(response.CodeForbidden, "Cannot identify caller"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, response.ErrorResponse(response.CodeRateLimited, "Too many search requests"))
		},
	})
}

// envelopeErrorHandler заворачивает ошибки echo (401, 403, 404 маршрута,
// паники) в общий конверт {success:false, data:{code, message}}
func envelopeErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else {
			log.Error("unhandled error", slog.String("error", err.Error()))
		}

		var errCode string
		switch code {
		case http.StatusUnauthorized:
			errCode = response.CodeUnauthorized
		case http.StatusForbidden:
			errCode = response.CodeForbidden
		case http.StatusNotFound:
			errCode = response.CodeNotFound
		case http.StatusBadRequest:
			errCode = response.CodeInvalidRequest
		case http.StatusTooManyRequests:
			errCode = response.CodeRateLimited
		default:
			errCode = response.CodeInternal
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, response.ErrorResponse(errCode, message))
		}
		if err != nil {
			log.Error("failed to write error response", slog.String("error", err.Error()))
		}
	}
}
