package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsingjyujing/fastlang/config"
	"github.com/tsingjyujing/fastlang/controller"
	"github.com/tsingjyujing/fastlang/utils"
)

func readConfig(configFile string) (*viper.Viper, *config.Envelope) {
	viperInstance := viper.New()
	if configFile != "" {
		viperInstance.SetConfigFile(configFile)
	} else {
		viperInstance.SetConfigName("config")
		viperInstance.SetConfigType("yaml")
		viperInstance.AddConfigPath("/etc/fastlang/")
		viperInstance.AddConfigPath("$HOME/.fastlang")
		viperInstance.AddConfigPath("./config")
	}
	viperInstance.SetEnvPrefix("FASTLANG")
	viperInstance.AutomaticEnv()
	viperInstance.SetDefault("server.address", ":8080")

	envelope := &config.Envelope{}
	if err := viperInstance.ReadInConfig(); err != nil {
		logger.WithError(err).Warn("No config file found, using defaults")
	} else {
		logger.Infof("Using config file: %s", viperInstance.ConfigFileUsed())
		var err error
		envelope, err = config.LoadConfigFromFile(viperInstance.ConfigFileUsed())
		if err != nil {
			logger.WithError(err).Fatal("Failed to parse configuration")
		}
	}
	return viperInstance, envelope
}

// NewServerCommand creates the HTTP server verb.
func NewServerCommand() *cobra.Command {
	var configFile string

	serverCommand := &cobra.Command{
		Use:   "server",
		Short: "Starting detection server",
		Run: func(cmd *cobra.Command, args []string) {
			echoServer := echo.New()
			viperInstance, envelope := readConfig(configFile)

			detectConfig, err := envelope.Detector.ToDetectConfig()
			if err != nil {
				logger.WithError(err).Fatal("Invalid detector configuration")
			}
			c, err := controller.NewController(detectConfig)
			if err != nil {
				logger.WithError(err).Fatal("Failed to create controller")
			}

			echoServer.Use(echoprometheus.NewMiddleware("fastlang"))
			echoServer.GET("/metrics", echoprometheus.NewHandler())
			echoServer.GET("/health", func(c echo.Context) error {
				return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
			})
			echoServer.Use(middleware.CORS())

			apiGroup := echoServer.Group("/api/v1")
			apiGroup.Use(middleware.Logger())

			tokens := envelope.Server.Tokens
			if len(tokens) == 0 {
				tokens = viperInstance.GetStringSlice("server.tokens")
			}
			if len(tokens) > 0 {
				logger.Infof("Bearer token authentication enabled with %d token(s)", len(tokens))
				apiGroup.Use(utils.CreateBearerTokenMiddleware(tokens))
			} else {
				logger.Warn("Bearer token authentication disabled - no tokens configured")
			}

			apiGroup.POST("/detect", c.DetectText)
			apiGroup.POST("/segment", c.SegmentText)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				address := envelope.Server.Address
				if address == "" {
					address = viperInstance.GetString("server.address")
				}
				logger.Infof("Starting server on %s", address)
				if err := echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("Server start error")
				}
			}()

			<-ctx.Done()
			stop()
			logger.Info("Shutting down server gracefully, press Ctrl+C again to force")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := echoServer.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Server forced to shutdown")
			}
			logger.Info("Server stopped gracefully")
		},
	}
	serverCommand.Flags().StringVar(&configFile, "config", "", "Path to config file")
	return serverCommand
}
