package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/events"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/tenant"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/validator"
)

// TokenTTL is how long issued session tokens stay valid.
const TokenTTL = 24 * time.Hour

// AuthClaims is the JWT payload for authenticated sessions.
type AuthClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	repo        repositories.Repository
	provisioner *tenant.Provisioner
	publisher   events.EventPublisher
	validator   *validator.Validator
	logger      *slog.Logger

	jwtSecret []byte
	batchSize int
	shuffle   func(n int, swap func(i, j int))
	now       func() time.Time
}

func NewAuthService(repo repositories.Repository, provisioner *tenant.Provisioner, publisher events.EventPublisher, v *validator.Validator, logger *slog.Logger, jwtSecret string, batchSize int) AuthService {
	if batchSize <= 0 {
		batchSize = DefaultAssignmentSize
	}
	return &authService{
		repo:        repo,
		provisioner: provisioner,
		publisher:   publisher,
		validator:   v,
		logger:      logger,
		jwtSecret:   []byte(jwtSecret),
		batchSize:   batchSize,
		shuffle:     rand.Shuffle,
		now:         time.Now,
	}
}

// Register creates an account under the sanitized username. For
// participants the answer partition and the question assignment are
// created in the same transaction, so a half-provisioned account can
// never be observed.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	id, err := tenant.Sanitize(req.Username)
	if err != nil {
		return nil, err
	}

	role := models.UserRole(req.Role)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     id.String(),
		PasswordHash: string(hash),
		Role:         role,
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		exists, err := r.User().ExistsByUsername(ctx, nil, id.String())
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return ErrUsernameTaken
		}

		if err := r.User().Create(ctx, nil, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if role != models.RoleParticipant {
			return nil
		}

		if _, err := s.provisioner.EnsurePartition(ctx, r, user.ID, id); err != nil {
			return fmt.Errorf("failed to provision answer partition: %w", err)
		}

		if _, err := assignQuestionBatch(ctx, r, user.ID, s.batchSize, s.shuffle); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role)

	if pErr := s.publisher.Publish(ctx, events.TopicUserRegistered, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}); pErr != nil {
		s.logger.Error("failed to publish user.registered", "error", pErr)
	}

	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// Login verifies credentials and issues a signed token. Participants left
// without a partition or assignments, for example accounts created before
// the question bank was filled, are repaired on the way in.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	id, err := tenant.Sanitize(req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, id.String())
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Role == models.RoleParticipant {
		s.heal(ctx, user, id)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	return &LoginResponse{
		Token: token,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}

// heal re-provisions whatever a participant is missing. Failures are
// logged, never surfaced: an incomplete bank must not lock anyone out.
func (s *authService) heal(ctx context.Context, user *models.User, id tenant.SafeIdentifier) {
	if _, err := s.provisioner.EnsurePartition(ctx, s.repo, user.ID, id); err != nil {
		s.logger.Warn("failed to heal answer partition", "user_id", user.ID, "error", err)
	}

	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		_, err := assignQuestionBatch(ctx, r, user.ID, s.batchSize, s.shuffle)
		return err
	})
	if err != nil && !errors.Is(err, ErrAlreadyAssigned) {
		s.logger.Warn("failed to heal question assignment", "user_id", user.ID, "error", err)
	}
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := AuthClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseToken validates a session token and returns its claims. The HTTP
// auth middleware is the only caller.
func ParseToken(tokenString string, secret []byte) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
