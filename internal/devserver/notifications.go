package devserver

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskapp/internal/model"
)

func (s *Server) mountNotifications(g *gin.RouterGroup) {
	n := g.Group("/notifications", s.requireAuth())
	n.GET("", s.listNotifications)
	n.PUT("", s.updateNotifications)
}

func (s *Server) listNotifications(c *gin.Context) {
	owner := c.Query("usuarioId")
	if owner == "" {
		owner = c.GetString(ctxUserID)
	}
	if !mayAccess(c, owner) {
		abort(c, http.StatusForbidden, "forbidden", "Cannot list notifications of another user")
		return
	}

	var readFilter *bool
	if v, err := strconv.ParseBool(c.Query("lida")); err == nil {
		readFilter = &v
	}

	s.mu.RLock()
	var docs []model.NotificationDocument
	for _, n := range s.notifications {
		if n.OwnerID != owner {
			continue
		}
		if readFilter != nil && n.Read != *readFilter {
			continue
		}
		docs = append(docs, model.NotificationDocument{Notification: n})
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].Notification, docs[j].Notification
		if a.NotifiedAt != b.NotifiedAt {
			return a.NotifiedAt > b.NotifiedAt
		}
		return a.ID < b.ID
	})
	c.JSON(http.StatusOK, pageOf(docs, 0))
}

// updateNotifications only applies the read flag; every other field of
// a notification is owned by the server.
func (s *Server) updateNotifications(c *gin.Context) {
	var in []model.Notification
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "Expected an array of notifications")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range in {
		prev, ok := s.notifications[n.ID]
		if !ok || !mayAccess(c, prev.OwnerID) {
			continue
		}
		prev.Read = n.Read
		s.notifications[n.ID] = prev
	}
	c.Status(http.StatusNoContent)
}
