package testutil

import (
	"context"

	"github.com/flexprice/proratemate/internal/cache"
	"github.com/flexprice/proratemate/internal/config"
	"github.com/flexprice/proratemate/internal/logger"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/flexprice/proratemate/internal/validator"
	"github.com/stretchr/testify/suite"
)

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	logger *logger.Logger
	config *config.Configuration
	cache  *cache.InMemoryCache
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	if _, err := validator.NewValidator(); err != nil {
		s.T().Fatalf("failed to create validator: %v", err)
	}

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetCache returns the per test result cache
func (s *BaseServiceTestSuite) GetCache() *cache.InMemoryCache {
	return s.cache
}
