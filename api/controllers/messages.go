package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	messagessvc "github.com/teomanager/teomanager-backend/internal/messages"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

type postMessageRequest struct {
	Body           string  `json:"body" validate:"required"`
	AttachmentPath *string `json:"attachment_path,omitempty"`
}

// MessagesThread returns the full message thread of an order. Reading the
// thread marks the other party's messages as read.
func MessagesThread(svc messagessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		thread, err := svc.Thread(r.Context(), orderID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

func MessagesPost(svc messagessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload postMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Post(r.Context(), messagessvc.PostInput{
			OrderID:        orderID,
			SenderID:       middleware.UserIDFromContext(r.Context()),
			Body:           payload.Body,
			AttachmentPath: payload.AttachmentPath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

func MessagesUnreadCount(svc messagessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.UnreadCount(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
