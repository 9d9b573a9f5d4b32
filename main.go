package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lizet96/clinisys/apiclient"
	"github.com/lizet96/clinisys/config"
	"github.com/lizet96/clinisys/database"
	"github.com/lizet96/clinisys/handlers"
	"github.com/lizet96/clinisys/logging"
	"github.com/lizet96/clinisys/metrics"
	"github.com/lizet96/clinisys/middleware"
	"github.com/lizet96/clinisys/routes"
	"github.com/lizet96/clinisys/services"
	"github.com/lizet96/clinisys/sessions"
	"github.com/lizet96/clinisys/views"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinisys",
		Short: "Consola administrativa CLINISYS",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pingCmd())
	rootCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(totpSecretCmd())
	rootCmd.AddCommand(limpiarLogsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia el servidor web de la consola",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func cargarConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Environment, cfg.LogLevel), nil
}

func runServer() error {
	cfg, logger, err := cargarConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	// Métricas
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Backend REST
	backend := apiclient.New(cfg.APIBaseURL, logger,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithMetrics(m),
	)

	// Sesiones
	var store sessions.Store
	if cfg.RedisURL != "" {
		client, err := sessions.ConectarRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		store = sessions.NewRedisStore(client)
		logger.Info().Msg("Sesiones en Redis")
	} else {
		store = sessions.NewMemoryStore()
		logger.Warn().Msg("REDIS_URL no definido, sesiones en memoria")
	}
	manager := sessions.NewManager(store, cfg.JWTSecret, cfg.SessionTTL, cfg.SessionRememberTTL)

	if cfg.OperadorHabilitado() {
		logger.Info().Str("operador", cfg.AdminUser).Bool("totp", cfg.AdminTOTPSecret != "").Msg("Cuenta local de operador habilitada")
	}

	// Registro de actividad
	deps := handlers.Deps{
		Backend:      backend,
		Sesiones:     manager,
		Autenticador: services.NewAutenticador(backend, cfg.AdminUser, cfg.AdminPasswordHash, cfg.AdminTOTPSecret),
		Logger:       logger,
		CookieSegura: cfg.IsProduction(),
	}
	var sink middleware.LogSink
	if cfg.DatabaseURL != "" {
		pool, logs, err := conectarLogs(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		sink = logs
		deps.Logs = logs
	} else {
		logger.Warn().Msg("DATABASE_URL no definido, registro de actividad deshabilitado")
	}
	deps.Actividad = middleware.NewActivityLogger(sink, logger, cfg.Environment)

	app := fiber.New(fiber.Config{
		Views: views.NewEngine(cfg.IsDev()),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error().Err(err).Str("path", c.Path()).Msg("Error no controlado")
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
		AppName:               "CLINISYS v1.0.0",
		DisableStartupMessage: !cfg.IsDev(),
	})

	routes.SetupRoutes(app, handlers.New(deps), routes.Opciones{
		Sesiones:        manager,
		Actividad:       deps.Actividad,
		Metrics:         m,
		Gatherer:        reg,
		Logger:          logger,
		LoginRateMax:    cfg.LoginRateMax,
		LoginRateWindow: cfg.LoginRateWindow,
		HSTS:            cfg.IsProduction(),
	})

	go func() {
		logger.Info().Str("port", cfg.Port).Str("backend", backend.BaseURL()).Msg("Servidor CLINISYS iniciado")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("Error al iniciar el servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Deteniendo el servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("Servidor detenido")
	return nil
}

func conectarLogs(ctx context.Context, url string, logger zerolog.Logger) (*pgxpool.Pool, *database.LogStore, error) {
	pool, err := database.Connect(ctx, url, logger)
	if err != nil {
		return nil, nil, err
	}
	logs := database.NewLogStore(pool)
	if err := logs.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, logs, nil
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verifica que el backend REST responda",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := cargarConfig()
			if err != nil {
				return err
			}
			backend := apiclient.New(cfg.APIBaseURL, logger, apiclient.WithTimeout(cfg.APITimeout))

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout)
			defer cancel()
			start := time.Now()
			if err := backend.Ping(ctx); err != nil {
				return fmt.Errorf("backend %s no disponible: %w", backend.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend %s disponible (%s)\n", backend.BaseURL(), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [contraseña]",
		Short: "Genera el hash bcrypt para ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contrasena := ""
			if len(args) == 1 {
				contrasena = args[0]
			} else {
				linea, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && linea == "" {
					return fmt.Errorf("leer contraseña: %w", err)
				}
				contrasena = strings.TrimRight(linea, "\r\n")
			}

			hash, err := services.HashContrasena(contrasena)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func totpSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totp-secret",
		Short: "Genera un secreto TOTP para ADMIN_TOTP_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cuenta, _ := cmd.Flags().GetString("cuenta")
			setup, err := services.GenerarSecretoTOTP(cuenta)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ADMIN_TOTP_SECRET=%s\n%s\n", setup.Secret, setup.QRCodeURL)
			return nil
		},
	}
	cmd.Flags().String("cuenta", "admin", "Nombre de la cuenta en la app autenticadora")
	return cmd
}

func limpiarLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limpiar-logs",
		Short: "Elimina registros de actividad más antiguos que --dias",
		RunE: func(cmd *cobra.Command, args []string) error {
			dias, _ := cmd.Flags().GetInt("dias")
			cfg, logger, err := cargarConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL no definido")
			}

			pool, logs, err := conectarLogs(cmd.Context(), cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := logs.Limpiar(cmd.Context(), dias)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Se eliminaron %d registros\n", n)
			return nil
		},
	}
	cmd.Flags().Int("dias", 30, "Antigüedad mínima en días")
	return cmd
}
