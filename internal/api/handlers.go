package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"currency-converter-service/internal/connectivity"
	"currency-converter-service/internal/converter"
	"currency-converter-service/internal/currency"
	"currency-converter-service/internal/history"
	"currency-converter-service/internal/logger"
	"currency-converter-service/internal/middleware"
	"currency-converter-service/internal/models"
	"currency-converter-service/internal/ratelimit"
	"currency-converter-service/internal/rates"
)

const serviceVersion = "1.0.0"

// HandlerConfig bundles the dependencies the HTTP layer needs
type HandlerConfig struct {
	Logger      *logger.Logger
	Converter   *converter.Converter
	Rates       *rates.Provider
	History     *history.Ledger
	Probe       *connectivity.Probe
	RateLimiter *ratelimit.Limiter
}

// Handlers contains all HTTP handlers
type Handlers struct {
	logger      *logger.Logger
	converter   *converter.Converter
	rates       *rates.Provider
	history     *history.Ledger
	probe       *connectivity.Probe
	rateLimiter *ratelimit.Limiter
	startTime   time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	return &Handlers{
		logger:      handlerConfig.Logger,
		converter:   handlerConfig.Converter,
		rates:       handlerConfig.Rates,
		history:     handlerConfig.History,
		probe:       handlerConfig.Probe,
		rateLimiter: handlerConfig.RateLimiter,
		startTime:   time.Now(),
	}
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(handlers.corsMiddleware())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimitMiddleware())
	}

	router.GET("/health", handlers.HealthCheck)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/convert", handlers.Convert)
		apiV1.GET("/rates", handlers.GetRates)
		apiV1.POST("/rates/refresh", handlers.RefreshRates)
		apiV1.GET("/history", handlers.GetHistory)
		apiV1.GET("/currencies", handlers.ListCurrencies)
		apiV1.GET("/currencies/:code", handlers.GetCurrencyName)
	}

	return router
}

// HealthCheck handles health check requests
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	online := false
	if handlers.probe != nil {
		online = handlers.probe.IsAvailable(context.Request.Context())
	}

	healthCheckResponse := models.HealthCheck{
		Status:    "healthy",
		Online:    online,
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(handlers.startTime).String(),
	}

	context.JSON(http.StatusOK, healthCheckResponse)
}

// Convert performs a currency conversion and records it in the history
func (handlers *Handlers) Convert(context *gin.Context) {
	var convertRequest models.ConvertRequest
	if err := context.ShouldBindJSON(&convertRequest); err != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, convertError := handlers.converter.Convert(
		context.Request.Context(),
		convertRequest.Amount,
		convertRequest.From,
		convertRequest.To,
	)
	if convertError != nil {
		handlers.writeConvertError(context, convertError)
		return
	}

	entry := result.Entry
	context.JSON(http.StatusOK, models.ConvertResponse{
		From:      entry.FromCurrency,
		To:        entry.ToCurrency,
		Amount:    entry.Amount,
		Rate:      result.Rate,
		Converted: entry.ConvertedAmount,
		Result: fmt.Sprintf("%.2f %s is equal to %.2f %s",
			entry.Amount, entry.FromCurrency, entry.ConvertedAmount, entry.ToCurrency),
		HistoryRecorded: result.Recorded,
	})
}

// writeConvertError maps converter errors onto HTTP statuses
func (handlers *Handlers) writeConvertError(context *gin.Context, convertError error) {
	var unsupported *converter.UnsupportedCurrencyError
	var rateNotFound *converter.RateNotFoundError

	switch {
	case errors.Is(convertError, converter.ErrInvalidAmount):
		handlers.writeErrorResponse(context, http.StatusBadRequest, "invalid amount", convertError.Error())
	case errors.As(convertError, &unsupported):
		handlers.writeErrorResponse(context, http.StatusBadRequest, "unsupported currency", convertError.Error())
	case errors.As(convertError, &rateNotFound):
		handlers.writeErrorResponse(context, http.StatusNotFound, "rate not found", convertError.Error())
	case errors.Is(convertError, converter.ErrRatesUnavailable):
		handlers.writeErrorResponse(context, http.StatusBadGateway, "rates unavailable", convertError.Error())
	default:
		handlers.writeErrorResponse(context, http.StatusInternalServerError, "conversion failed", convertError.Error())
	}
}

// GetRates returns the current snapshot, fetching or falling back to the
// cache as connectivity allows
func (handlers *Handlers) GetRates(context *gin.Context) {
	snapshot, fetchError := handlers.rates.GetRates(context.Request.Context())
	if fetchError != nil {
		handlers.writeErrorResponse(context, http.StatusBadGateway, "failed to obtain rates", fetchError.Error())
		return
	}

	context.JSON(http.StatusOK, snapshot)
}

// RefreshRates is the explicit refresh action; unlike GetRates it reports
// an error instead of serving cached data
func (handlers *Handlers) RefreshRates(context *gin.Context) {
	snapshot, refreshError := handlers.rates.UpdateRates(context.Request.Context())
	if refreshError != nil {
		if errors.Is(refreshError, rates.ErrOffline) {
			handlers.writeErrorResponse(context, http.StatusBadGateway, "no internet connection", refreshError.Error())
			return
		}
		handlers.writeErrorResponse(context, http.StatusBadGateway, "failed to refresh rates", refreshError.Error())
		return
	}

	context.JSON(http.StatusOK, snapshot)
}

// GetHistory returns recorded conversions, latest first
func (handlers *Handlers) GetHistory(context *gin.Context) {
	entries := handlers.history.LoadAll()

	// Stored oldest-first; displayed newest-first.
	reversed := make([]models.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		reversed = append(reversed, entries[i])
	}

	context.JSON(http.StatusOK, gin.H{
		"count":   len(reversed),
		"history": reversed,
	})
}

// ListCurrencies returns the supported currency codes with display names
func (handlers *Handlers) ListCurrencies(context *gin.Context) {
	codes := currency.Codes()
	currencies := make([]models.CurrencyInfo, 0, len(codes))
	for _, code := range codes {
		name, _ := currency.Name(code)
		currencies = append(currencies, models.CurrencyInfo{Code: code, Name: name})
	}

	context.JSON(http.StatusOK, gin.H{
		"count":      len(currencies),
		"currencies": currencies,
	})
}

// GetCurrencyName resolves one currency code to its display name
func (handlers *Handlers) GetCurrencyName(context *gin.Context) {
	code := strings.ToUpper(context.Param("code"))

	name, found := currency.Name(code)
	if !found {
		handlers.writeErrorResponse(context, http.StatusNotFound, "unknown currency code", code)
		return
	}

	context.JSON(http.StatusOK, models.CurrencyInfo{Code: code, Name: name})
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(context *gin.Context, statusCode int, errorMessage, errorDetails string) {
	errorResponse := models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	}

	context.JSON(statusCode, errorResponse)
}

// corsMiddleware adds CORS headers using Gin middleware
func (handlers *Handlers) corsMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Header("Access-Control-Allow-Origin", "*")
		context.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		context.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if context.Request.Method == "OPTIONS" {
			context.AbortWithStatus(http.StatusOK)
			return
		}

		context.Next()
	}
}

// rateLimitMiddleware provides rate limiting using Gin middleware
func (handlers *Handlers) rateLimitMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		clientIP := handlers.rateLimiter.GetClientIP(context.Request)

		if !handlers.rateLimiter.Allow(clientIP) {
			handlers.logger.Warnf("Rate limit exceeded for IP: %s", clientIP)
			context.Header("X-RateLimit-Limit", strconv.Itoa(handlers.rateLimiter.Configuration.RateLimitRequests))
			context.Header("X-RateLimit-Remaining", "0")
			context.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(handlers.rateLimiter.Configuration.RateLimitWindow).Unix(), 10))
			context.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			context.Abort()
			return
		}

		context.Next()
	}
}
