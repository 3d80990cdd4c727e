package service

import (
	"github.com/flexprice/proratemate/internal/cache"
	"github.com/flexprice/proratemate/internal/config"
	"github.com/flexprice/proratemate/internal/domain/proration"
	"github.com/flexprice/proratemate/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Calculators
	ProrationCalculator proration.Calculator
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	prorationCalculator proration.Calculator,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		Cache:               cache,
		ProrationCalculator: prorationCalculator,
	}
}

// NewProrationCalculator builds the calculator with the configured iteration cap
func NewProrationCalculator(config *config.Configuration) proration.Calculator {
	return proration.NewCalculator(config.Proration.MaxPeriodIterations)
}
