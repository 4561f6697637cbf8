package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/services"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	uploadDir       string
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger, uploadDir string) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		uploadDir:       uploadDir,
	}
}

// CreateQuestion adds a question to the bank. Accepts JSON, or a
// multipart form when the question ships a reference image.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	req, ok := h.bindCreateRequest(c)
	if !ok {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating question", "points", req.Points)

	question, err := h.questionService.Create(c.Request.Context(), req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Question created successfully",
		Data:    question,
	})
}

// ListQuestions returns bank questions, newest first.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := repositories.QuestionFilters{}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}

	resp, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *QuestionHandler) bindCreateRequest(c *gin.Context) (*services.CreateQuestionRequest, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req services.CreateQuestionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return nil, false
		}
		return &req, true
	}

	points, err := strconv.Atoi(c.PostForm("points"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid points value",
		})
		return nil, false
	}

	req := &services.CreateQuestionRequest{
		Question:      c.PostForm("question"),
		Points:        points,
		RequiresImage: c.PostForm("requires_image") == "true",
	}

	if file, err := c.FormFile("image"); err == nil {
		url, upErr := saveUpload(c, file, h.uploadDir)
		if upErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Image upload failed",
				Details: upErr.Error(),
			})
			return nil, false
		}
		req.ImageURL = &url
	}

	return req, true
}
