package models

import "time"

type FeedbackKind string

const (
	FeedbackSuccess  FeedbackKind = "success"
	FeedbackError    FeedbackKind = "error"
	FeedbackWarning  FeedbackKind = "warning"
	FeedbackInfo     FeedbackKind = "info"
	FeedbackLoading  FeedbackKind = "loading"
	FeedbackProgress FeedbackKind = "progress"
)

func (k FeedbackKind) Valid() bool {
	switch k {
	case FeedbackSuccess, FeedbackError, FeedbackWarning, FeedbackInfo, FeedbackLoading, FeedbackProgress:
		return true
	}
	return false
}

// Persistent kinds never arm an auto-dismiss timer.
func (k FeedbackKind) Persistent() bool {
	return k == FeedbackLoading || k == FeedbackProgress
}

type FeedbackPosition string

const (
	PositionTop         FeedbackPosition = "top"
	PositionBottom      FeedbackPosition = "bottom"
	PositionTopLeft     FeedbackPosition = "top-left"
	PositionTopRight    FeedbackPosition = "top-right"
	PositionBottomLeft  FeedbackPosition = "bottom-left"
	PositionBottomRight FeedbackPosition = "bottom-right"
	PositionCenter      FeedbackPosition = "center"
)

type AnimationType string

const (
	AnimationSlide  AnimationType = "slide"
	AnimationFade   AnimationType = "fade"
	AnimationGrow   AnimationType = "grow"
	AnimationZoom   AnimationType = "zoom"
	AnimationBounce AnimationType = "bounce"
	AnimationShake  AnimationType = "shake"
	AnimationPulse  AnimationType = "pulse"
)

type FeedbackAction struct {
	Label string `json:"label" validate:"required"`
	Key   string `json:"key" validate:"required"`
}

// FeedbackInput is what callers pass to show a feedback item.
// A zero Duration means "use the configured default".
type FeedbackInput struct {
	Kind       FeedbackKind     `json:"kind"`
	Title      string           `json:"title,omitempty"`
	Message    string           `json:"message"`
	Duration   time.Duration    `json:"duration,omitempty"`
	Persistent bool             `json:"persistent,omitempty"`
	Position   FeedbackPosition `json:"position,omitempty"`
	Animation  AnimationType    `json:"animation,omitempty"`
	Progress   *int             `json:"progress,omitempty"`
	Action     *FeedbackAction  `json:"action,omitempty"`
}

type FeedbackItem struct {
	ID         string           `json:"id"`
	Kind       FeedbackKind     `json:"kind"`
	Title      string           `json:"title,omitempty"`
	Message    string           `json:"message"`
	CreatedAt  time.Time        `json:"created_at"`
	Duration   time.Duration    `json:"duration"`
	Persistent bool             `json:"persistent"`
	Position   FeedbackPosition `json:"position"`
	Animation  AnimationType    `json:"animation"`
	Progress   *int             `json:"progress,omitempty"`
	Action     *FeedbackAction  `json:"action,omitempty"`
	Count      int              `json:"count"`
}

func (f FeedbackItem) Clone() FeedbackItem {
	if f.Progress != nil {
		p := *f.Progress
		f.Progress = &p
	}
	if f.Action != nil {
		a := *f.Action
		f.Action = &a
	}
	return f
}

type RemovalReason string

const (
	RemovalExpired   RemovalReason = "expired"
	RemovalDismissed RemovalReason = "dismissed"
	RemovalAction    RemovalReason = "action"
	RemovalCompleted RemovalReason = "completed"
	RemovalShutdown  RemovalReason = "shutdown"
)

// QuickFeedback occupies the single centred slot used for short confirmations.
type QuickFeedback struct {
	Kind      FeedbackKind `json:"kind"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}
