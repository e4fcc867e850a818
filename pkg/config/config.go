package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Checkout CheckoutConfig
	Booking  BookingConfig
	Env      string
}

type ServerConfig struct {
	Address      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxPoolConns int
}

// CheckoutConfig carries the hosted checkout collaborator settings. The
// secret key stays server-side; it is never exposed through the API.
type CheckoutConfig struct {
	BaseURL    string
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

type BookingConfig struct {
	Currency       string
	PetFee         float64
	ExtraBedFee    float64
	SessionTTL     time.Duration
	FetchTimeout   time.Duration
	ConfirmTimeout time.Duration
}

func (dc *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s pool_max_conns=%d",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
		dc.MaxPoolConns,
	)
}

func NewConfig() (*Config, error) {
	// .env is optional; plain environment variables win when present
	_ = godotenv.Load()

	serverCfg, err := newServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config error: %w", err)
	}

	dbCfg, err := newDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}

	bookingCfg, err := newBookingConfig()
	if err != nil {
		return nil, fmt.Errorf("booking config error: %w", err)
	}

	return &Config{
		Server:   serverCfg,
		Database: dbCfg,
		Checkout: newCheckoutConfig(),
		Booking:  bookingCfg,
		Env:      getEnvOrDefault("ENV", "development"),
	}, nil
}

func newServerConfig() (ServerConfig, error) {
	writeTimeout, err := getDurationFromEnv("SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("write timeout parse error: %w", err)
	}

	readTimeout, err := getDurationFromEnv("SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read timeout parse error: %w", err)
	}

	idleTimeout, err := getDurationFromEnv("SERVER_IDLE_TIMEOUT", "30s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("idle timeout parse error: %w", err)
	}

	return ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":5000"),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func newDatabaseConfig() (DatabaseConfig, error) {
	maxConns, err := strconv.Atoi(getEnvOrDefault("MAX_CONNS", "20"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("max connections parse error: %w", err)
	}

	return DatabaseConfig{
		Host:         getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:         getEnvOrDefault("POSTGRES_PORT", "5432"),
		Name:         getEnvOrDefault("POSTGRES_DB", "rentals"),
		User:         getEnvOrDefault("POSTGRES_USER", "postgres"),
		Password:     getEnvOrDefault("POSTGRES_PASSWORD", ""),
		MaxPoolConns: maxConns,
	}, nil
}

func newCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		BaseURL:    getEnvOrDefault("CHECKOUT_URL", "https://api.checkout.example.com/v1"),
		SecretKey:  os.Getenv("CHECKOUT_SECRET_KEY"),
		SuccessURL: getEnvOrDefault("CHECKOUT_SUCCESS_URL", "https://adriaticstays.com/booking/success"),
		CancelURL:  getEnvOrDefault("CHECKOUT_CANCEL_URL", "https://adriaticstays.com/booking/cancelled"),
	}
}

func newBookingConfig() (BookingConfig, error) {
	petFee, err := getFloatFromEnv("BOOKING_PET_FEE", "20")
	if err != nil {
		return BookingConfig{}, fmt.Errorf("pet fee parse error: %w", err)
	}

	extraBedFee, err := getFloatFromEnv("BOOKING_EXTRA_BED_FEE", "15")
	if err != nil {
		return BookingConfig{}, fmt.Errorf("extra bed fee parse error: %w", err)
	}

	sessionTTL, err := getDurationFromEnv("BOOKING_SESSION_TTL", "30m")
	if err != nil {
		return BookingConfig{}, fmt.Errorf("session ttl parse error: %w", err)
	}

	fetchTimeout, err := getDurationFromEnv("BOOKING_FETCH_TIMEOUT", "10s")
	if err != nil {
		return BookingConfig{}, fmt.Errorf("fetch timeout parse error: %w", err)
	}

	confirmTimeout, err := getDurationFromEnv("BOOKING_CONFIRM_TIMEOUT", "20s")
	if err != nil {
		return BookingConfig{}, fmt.Errorf("confirm timeout parse error: %w", err)
	}

	return BookingConfig{
		Currency:       getEnvOrDefault("BOOKING_CURRENCY", "eur"),
		PetFee:         petFee,
		ExtraBedFee:    extraBedFee,
		SessionTTL:     sessionTTL,
		FetchTimeout:   fetchTimeout,
		ConfirmTimeout: confirmTimeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationFromEnv(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnvOrDefault(key, defaultValue))
}

func getFloatFromEnv(key, defaultValue string) (float64, error) {
	return strconv.ParseFloat(getEnvOrDefault(key, defaultValue), 64)
}
