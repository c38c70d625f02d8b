package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sahanr/harvestlink/internal/domain"
)

// ListNotifications returns a recipient's notifications, newest first.
// GET /api/notifications/{recipient}
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	recipientID, err := uuid.Parse(r.PathValue("recipient"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.notification.list", "invalid recipient id"))
		return
	}

	notifications, err := h.notifications.ListForRecipient(r.Context(), recipientID)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkNotificationRead flips one notification to read.
// PATCH /api/notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.ErrorResponse(w, r, domain.Invalid("handler.notification.read", "invalid notification id"))
		return
	}

	notification, err := h.notifications.MarkRead(r.Context(), notificationID)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, notification)
}
