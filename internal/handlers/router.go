package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/services"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/utils"
)

type HandlerManager struct {
	userHandler     *UserHandler
	questionHandler *QuestionHandler
	teamHandler     *TeamHandler
	authMiddleware  *AuthMiddleware
	uploadDir       string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	jwtSecret string,
	uploadDir string,
) *HandlerManager {
	return &HandlerManager{
		userHandler:     NewUserHandler(serviceManager.Auth(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger, uploadDir),
		teamHandler:     NewTeamHandler(serviceManager.Assignment(), serviceManager.Answer(), serviceManager.Scoring(), logger, uploadDir),
		authMiddleware:  NewAuthMiddleware(jwtSecret, logger),
		uploadDir:       uploadDir,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.Static("/uploads", hm.uploadDir)

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", hm.userHandler.Register)
			users.POST("/login", hm.userHandler.Login)
		}

		// Participant game flow
		game := api.Group("")
		game.Use(hm.authMiddleware.Authenticate())
		{
			game.GET("/current-question", hm.authMiddleware.RequireRole(models.RoleParticipant), hm.teamHandler.CurrentQuestion)
			game.POST("/submit/:questionId", hm.authMiddleware.RequireRole(models.RoleParticipant), hm.teamHandler.SubmitAnswer)
		}

		// Scoring surface
		teams := api.Group("/teams")
		teams.Use(hm.authMiddleware.Authenticate())
		{
			teams.GET("", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.teamHandler.ListTeams)
			teams.GET("/results", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.teamHandler.Results)
			teams.GET("/results/export", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.teamHandler.ExportResults)

			// Admin review
			teams.GET("/:username/answers", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.teamHandler.ListAnswers)
			teams.POST("/:username/answers/:answerId/review", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.teamHandler.ReviewAnswer)
		}

		// Question bank: any authenticated user may browse, only admins create.
		questions := api.Group("/questions")
		questions.Use(hm.authMiddleware.Authenticate())
		{
			questions.POST("", hm.authMiddleware.RequireRole(models.RoleAdmin), hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
		}
	}
}
