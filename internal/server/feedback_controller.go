package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type FeedbackController struct {
	feedback *usecase.FeedbackUseCase
}

func NewFeedbackController(feedback *usecase.FeedbackUseCase) *FeedbackController {
	return &FeedbackController{feedback: feedback}
}

type feedbackView struct {
	Items   []models.FeedbackItem `json:"items"`
	Quick   *models.QuickFeedback `json:"quick,omitempty"`
	Loading bool                  `json:"loading"`
}

func (fc *FeedbackController) Active(c echo.Context, _ empty) (feedbackView, error) {
	view := feedbackView{Items: fc.feedback.Active(), Loading: fc.feedback.IsLoading()}
	if q, ok := fc.feedback.Quick(); ok {
		view.Quick = &q
	}
	return view, nil
}

type showFeedbackRequest struct {
	Kind       models.FeedbackKind     `json:"kind" validate:"required,oneof=success error warning info loading progress"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	DurationMs int                     `json:"duration_ms" validate:"gte=0"`
	Persistent bool                    `json:"persistent"`
	Position   models.FeedbackPosition `json:"position" validate:"omitempty,oneof=top bottom top-left top-right bottom-left bottom-right center"`
	Animation  models.AnimationType    `json:"animation" validate:"omitempty,oneof=slide fade grow zoom bounce shake pulse"`
	Progress   *int                    `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Action     *models.FeedbackAction  `json:"action"`
}

type idResponse struct {
	ID string `json:"id"`
}

// Show answers with an empty id when feedback is disabled.
func (fc *FeedbackController) Show(c echo.Context, req showFeedbackRequest) (idResponse, error) {
	id, err := fc.feedback.Show(c.Request().Context(), models.FeedbackInput{
		Kind:       req.Kind,
		Title:      req.Title,
		Message:    req.Message,
		Duration:   time.Duration(req.DurationMs) * time.Millisecond,
		Persistent: req.Persistent,
		Position:   req.Position,
		Animation:  req.Animation,
		Progress:   req.Progress,
		Action:     req.Action,
	})
	return idResponse{ID: id}, err
}

func (fc *FeedbackController) Hide(c echo.Context, req idRequest) error {
	return fc.feedback.Hide(c.Request().Context(), req.ID)
}

type progressRequest struct {
	ID    string `param:"id" json:"-" validate:"required"`
	Value int    `json:"value"`
}

func (fc *FeedbackController) UpdateProgress(c echo.Context, req progressRequest) (models.FeedbackItem, error) {
	return fc.feedback.UpdateProgress(c.Request().Context(), req.ID, req.Value)
}

type completeRequest struct {
	ID      string `param:"id" json:"-" validate:"required"`
	Message string `json:"message"`
}

func (fc *FeedbackController) Complete(c echo.Context, req completeRequest) (idResponse, error) {
	id, err := fc.feedback.Complete(c.Request().Context(), req.ID, req.Message)
	return idResponse{ID: id}, err
}

func (fc *FeedbackController) TakeAction(c echo.Context, req idRequest) (models.FeedbackAction, error) {
	return fc.feedback.TakeAction(c.Request().Context(), req.ID)
}

type showProgressRequest struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

func (fc *FeedbackController) ShowProgress(c echo.Context, req showProgressRequest) (idResponse, error) {
	id, err := fc.feedback.ShowProgress(c.Request().Context(), req.Message, req.Progress)
	return idResponse{ID: id}, err
}

type showLoadingRequest struct {
	Message string `json:"message"`
}

func (fc *FeedbackController) ShowLoading(c echo.Context, req showLoadingRequest) (idResponse, error) {
	id, err := fc.feedback.ShowLoading(c.Request().Context(), req.Message)
	return idResponse{ID: id}, err
}

func (fc *FeedbackController) HideLoading(c echo.Context, req idRequest) error {
	return fc.feedback.HideLoading(c.Request().Context(), req.ID)
}

type hideAllLoadingResponse struct {
	Hidden int `json:"hidden"`
}

func (fc *FeedbackController) HideAllLoading(c echo.Context, _ empty) (hideAllLoadingResponse, error) {
	return hideAllLoadingResponse{Hidden: fc.feedback.HideAllLoading(c.Request().Context())}, nil
}

type quickRequest struct {
	Kind    models.FeedbackKind `json:"kind" validate:"required,oneof=success error warning info"`
	Message string              `json:"message"`
}

func (fc *FeedbackController) ShowQuick(c echo.Context, req quickRequest) error {
	return fc.feedback.ShowQuick(c.Request().Context(), req.Kind, req.Message)
}
