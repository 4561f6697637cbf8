package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/cache"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/events"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/tenant"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	JWTSecret      string
	AssignmentSize int
}

// serviceManager implements the ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo        repositories.Repository
	cacheHelper *cache.CacheHelper
	publisher   events.EventPublisher
	logger      *slog.Logger
	validator   *validator.Validator
	config      ServiceManagerConfig

	// Service instances
	authService       AuthService
	assignmentService AssignmentService
	answerService     AnswerService
	scoringService    ScoringService
	questionService   QuestionService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, cacheHelper *cache.CacheHelper, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.AssignmentSize <= 0 {
		config.AssignmentSize = DefaultAssignmentSize
	}
	return &serviceManager{
		repo:        repo,
		cacheHelper: cacheHelper,
		publisher:   publisher,
		logger:      logger,
		validator:   v,
		config:      config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	provisioner := tenant.NewProvisioner(sm.logger)

	sm.authService = NewAuthService(sm.repo, provisioner, sm.publisher, sm.validator, sm.logger, sm.config.JWTSecret, sm.config.AssignmentSize)
	sm.assignmentService = NewAssignmentService(sm.repo, provisioner, sm.logger, sm.config.AssignmentSize)
	sm.answerService = NewAnswerService(sm.repo, provisioner, sm.publisher, sm.logger)
	sm.scoringService = NewScoringService(sm.repo, sm.cacheHelper, sm.logger)
	sm.questionService = NewQuestionService(sm.repo, sm.validator, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.assignmentService
}

func (sm *serviceManager) Answer() AnswerService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.answerService
}

func (sm *serviceManager) Scoring() ScoringService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.scoringService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.questionService
}

// HealthCheck verifies the manager's critical dependencies
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown releases resources held by the services
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}
