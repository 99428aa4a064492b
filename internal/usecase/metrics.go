package usecase

import (
	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

var (
	messagesSent = util.MustCounterVec(
		"chat_messages_sent_total", "Messages accepted by rooms.", "type")
	messagesRejected = util.MustCounterVec(
		"chat_messages_rejected_total", "Messages rejected before reaching a room.", "reason")
	reactionsToggled = util.MustCounterVec(
		"chat_reactions_toggled_total", "Reaction toggles.", "result")
	feedbackShown = util.MustCounterVec(
		"feedback_items_shown_total", "Feedback items shown.", "kind", "grouped")
	feedbackRemoved = util.MustCounterVec(
		"feedback_items_removed_total", "Feedback items removed.", "reason")
	notificationsCreated = util.MustCounterVec(
		"notifications_created_total", "Notifications created.", "category")
	notificationsEvicted = util.MustCounterVec(
		"notifications_evicted_total", "Notifications dropped by the cap.", "read")
	deliveryAttempts = util.MustCounterVec(
		"delivery_attempts_total", "Delivery cue attempts.", "channel", "result")
)

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
