package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/services"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/utils"
)

// TeamHandler serves the participant game flow and the admin review and
// scoring surface.
type TeamHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	answerService     services.AnswerService
	scoringService    services.ScoringService
	uploadDir         string
}

func NewTeamHandler(assignmentService services.AssignmentService, answerService services.AnswerService, scoringService services.ScoringService, logger utils.Logger, uploadDir string) *TeamHandler {
	return &TeamHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		answerService:     answerService,
		scoringService:    scoringService,
		uploadDir:         uploadDir,
	}
}

// CurrentQuestion returns the caller's next unanswered question.
func (h *TeamHandler) CurrentQuestion(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.assignmentService.CurrentQuestion(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitAnswer records the caller's answer for one assigned question.
// Accepts JSON, or a multipart form when the answer ships an image.
func (h *TeamHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	questionID := h.parseIDParam(c, "questionId")
	if questionID == 0 {
		return
	}

	req, ok := h.bindSubmitRequest(c)
	if !ok {
		return
	}

	meta := &services.ClientMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	h.LogRequest(c, "Submitting answer", "question_id", questionID)

	answer, err := h.answerService.Submit(c.Request.Context(), userID, questionID, req, meta)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Answer submitted successfully",
		Data:    answer,
	})
}

// ListTeams lists every participant with current points.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.scoringService.Teams(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// Results returns the ranked leaderboard.
func (h *TeamHandler) Results(c *gin.Context) {
	entries, err := h.scoringService.Leaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": entries})
}

// ExportResults streams the leaderboard as an XLSX download.
func (h *TeamHandler) ExportResults(c *gin.Context) {
	data, err := h.scoringService.ExportLeaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListAnswers returns every answer of one participant for review.
func (h *TeamHandler) ListAnswers(c *gin.Context) {
	username := c.Param("username")

	h.LogRequest(c, "Listing team answers", "username", username)

	answers, err := h.answerService.ListForParticipant(c.Request.Context(), username)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// ReviewAnswer records the admin verdict on one answer.
func (h *TeamHandler) ReviewAnswer(c *gin.Context) {
	adminID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	username := c.Param("username")
	answerID := h.parseIDParam(c, "answerId")
	if answerID == 0 {
		return
	}

	var req services.ReviewAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if req.IsAccepted == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "is_accepted is required",
		})
		return
	}

	h.LogRequest(c, "Reviewing answer", "username", username, "answer_id", answerID)

	answer, err := h.answerService.Review(c.Request.Context(), adminID, username, answerID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Answer reviewed successfully",
		Data:    answer,
	})
}

func (h *TeamHandler) bindSubmitRequest(c *gin.Context) (*services.SubmitAnswerRequest, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req services.SubmitAnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return nil, false
		}
		return &req, true
	}

	req := &services.SubmitAnswerRequest{}
	if text := c.PostForm("text_answer"); text != "" {
		req.TextAnswer = &text
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
		req.ImageAnswerURL = &url
	}

	return req, true
}
