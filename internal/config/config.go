package config

import (
	"os"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
)

type Config struct {
	Port               string
	JWTSecret          string
	ArchiveDatabaseURL string
	TaxRate            decimal.Decimal
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		ArchiveDatabaseURL: getEnv("ARCHIVE_DATABASE_URL", ""),
		TaxRate:            getTaxRate(),
	}
}

func getTaxRate() decimal.Decimal {
	v := os.Getenv("TAX_RATE")
	if v == "" {
		return domain.DefaultTaxRate
	}
	rate, err := decimal.NewFromString(v)
	if err != nil || rate.IsNegative() {
		return domain.DefaultTaxRate
	}
	return rate
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
