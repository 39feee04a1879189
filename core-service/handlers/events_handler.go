package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/events"
)

// EventsHandler upgrades authenticated clients onto the hierarchy change feed.
type EventsHandler struct {
	hub *events.Hub
	log *logrus.Logger
}

func NewEventsHandler(hub *events.Hub, log *logrus.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, log: log}
}

// Subscribe opens the websocket feed
// @Summary Hierarchy change feed
// @Description Websocket stream of organization.created, organization.updated and organization.deleted events
// @Tags hierarchy
// @Security BearerAuth
// @Success 101
// @Failure 401 {object} handlers.ErrorResponse
// @Router /hierarchy/events [get]
func (h *EventsHandler) Subscribe(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, actor.ID.String()); err != nil {
		h.log.WithError(err).WithField("actor_id", actor.ID).Debug("websocket upgrade failed")
	}
}
