package main

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/zhubonan/castepxbin/castepbin"
	"github.com/zhubonan/castepxbin/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Decode a file and serve the namespace over HTTP",
		Flags: append(commonFileFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(c, LoadConfig(), &addr)

			ns, err := castepbin.ReadFile(filePath)
			if err != nil {
				return err
			}
			log.Info("decoded file", "path", filePath, "fields", len(ns))

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			e.Use(requestID())
			registerRoutes(e, ns)

			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

// requestID tags every response with a fresh request identifier.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			c.Response().Header().Set("X-Request-ID", uuid.NewString())
			return next(c)
		}
	}
}

func registerRoutes(e *echo.Echo, ns castepbin.Namespace) {
	e.GET("/api/fields", func(c *echo.Context) error {
		keys := make([]string, 0, len(ns))
		for k := range ns {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return c.JSON(http.StatusOK, keys)
	})
	e.GET("/api/fields/:name", func(c *echo.Context) error {
		v, ok := ns[c.Param("name")]
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "no such field"})
		}
		return c.JSON(http.StatusOK, v)
	})
	e.GET("/api/namespace", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, ns)
	})
}
