package main

import (
	"net/http"
	"os"
	"time"

	"habitbeat/api/handler"
	apiMiddleware "habitbeat/api/middleware"
	"habitbeat/api/routes"
	"habitbeat/config"
	"habitbeat/internal/repository"
	"habitbeat/internal/service"
	"habitbeat/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnv()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	db := config.ConnectionDb()
	if err := config.MigrateDb(db); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}
	redisClient := config.ConnectionRedis()
	validate := validator.New()

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Fatal("JWT_SECRET is required")
	}
	tokenHashKey := []byte(os.Getenv("TOKEN_HASH_KEY"))
	if len(tokenHashKey) == 0 {
		logger.Fatal("TOKEN_HASH_KEY is required")
	}

	jwtManager := utils.JWTManager{
		Secret:         jwtSecret,
		Issuer:         os.Getenv("JWT_ISSUER"),
		AccessTokenTTL: 15 * time.Minute,
	}

	accountRepo := repository.NewAccountRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	verificationRepo := repository.NewVerificationTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	securityLogRepo := repository.NewSecurityLogRepository(db)

	clock := service.RealClock{}
	tokenHasher := service.HMACTokenHasher{Key: tokenHashKey}
	passwordHasher := service.BcryptPasswordHasher{}

	emailSender := service.NewResendEmailSender(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("EMAIL_FROM"),
		os.Getenv("APP_BASE_URL"),
	)

	authService := service.NewAuthService(
		accountRepo,
		credentialRepo,
		securityLogRepo,
		service.NewVerificationTokenService(verificationRepo, tokenHasher, clock),
		service.NewSessionService(sessionRepo, tokenHasher, clock),
		repository.NewTxManager(db),
		emailSender,
		passwordHasher,
		service.JWTAccessIssuer{Manager: &jwtManager},
		service.NewRedisRateLimiter(redisClient),
		clock,
		service.AuthConfig{
			AccessTokenTTL:       15 * time.Minute,
			RefreshTokenTTL:      30 * 24 * time.Hour,
			VerificationTokenTTL: 30 * time.Minute,
			ResetTokenTTL:        30 * time.Minute,
			LoginMaxAttempts:     5,
			LoginWindow:          15 * time.Minute,
			ForgotMaxAttempts:    3,
			ForgotWindow:         time.Hour,
		},
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = os.Getenv("COOKIE_DOMAIN")
	authHandler.SecureCookies = os.Getenv("COOKIE_SECURE") != "false"

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &jwtManager}
	router := routes.NewRouter(app, authHandler, authMiddleware)
	router.RegisterRoutes()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", addr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
