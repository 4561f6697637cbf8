package validator

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,safe_username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,user_role"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateQuestionRequest adds a question to the bank. Image handling happens
// at the HTTP boundary; the core only sees the stored URL.
type CreateQuestionRequest struct {
	Question      string  `json:"question" validate:"required,max=2000"`
	Points        int     `json:"points" validate:"required,gt=0,max=1000"`
	RequiresImage bool    `json:"requires_image"`
	ImageURL      *string `json:"image_url" validate:"omitempty,max=255"`
}

// SubmitAnswerRequest is a participant's submission for one question. The
// empty-answer rule (at least one of text/image) is a business check in the
// answer service, not a field rule.
type SubmitAnswerRequest struct {
	TextAnswer     *string `json:"text_answer" validate:"omitempty,max=10000"`
	ImageAnswerURL *string `json:"image_answer_url" validate:"omitempty,max=255"`
}

// ReviewAnswerRequest is an admin verdict on a submitted answer.
type ReviewAnswerRequest struct {
	IsAccepted *bool   `json:"is_accepted" validate:"required"`
	Feedback   *string `json:"feedback" validate:"omitempty,max=2000"`
}
