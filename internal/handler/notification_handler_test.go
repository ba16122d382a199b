package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/internal/service"
	"github.com/hirestack/hirestack-backend/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testAuth stands in for the JWT middleware: actor identity comes from
// request headers instead of a token.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Actor-ID"); id != "" {
			c.Set("actor_id", id)
			c.Set("actor_role", c.GetHeader("X-Actor-Role"))
		}
		c.Next()
	}
}

func setupNotificationRouter(t *testing.T) (*gin.Engine, repository.NotificationRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, realtime.NewDirectory(), realtime.NewRedisPusher(nil))
	h := NewNotificationHandler(svc, realtime.NewDirectory(), nil)

	r := gin.New()
	r.Use(testAuth())
	r.GET("/api/notifications", h.GetNotifications)
	r.GET("/api/notifications/unread-count", h.UnreadCount)
	r.PUT("/api/notifications/:id/read", h.MarkAsRead)
	r.PUT("/api/notifications/read-all", h.MarkAllAsRead)
	r.DELETE("/api/notifications/:id", h.DeleteNotification)

	return r, repo
}

func doRequest(r *gin.Engine, method, path string, actorID uuid.UUID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Actor-ID", actorID.String())
	req.Header.Set("X-Actor-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetNotifications(t *testing.T) {
	r, repo := setupNotificationRouter(t)

	actorID := uuid.New()
	for i := 0; i < 2; i++ {
		n := &model.Notification{RecipientID: actorID, RecipientKind: model.RoleUser, Message: "m"}
		if err := repo.Create(context.Background(), n); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Someone else's notification must not leak into the list.
	foreign := &model.Notification{RecipientID: uuid.New(), RecipientKind: model.RoleUser, Message: "m"}
	if err := repo.Create(context.Background(), foreign); err != nil {
		t.Fatalf("seed foreign: %v", err)
	}

	w := doRequest(r, http.MethodGet, "/api/notifications", actorID, model.RoleUser)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Data []model.Notification `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 {
		t.Errorf("got %d notifications, want 2", len(body.Data))
	}
}

func TestGetNotificationsUnauthenticated(t *testing.T) {
	r, _ := setupNotificationRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestUnreadCount(t *testing.T) {
	r, repo := setupNotificationRouter(t)

	actorID := uuid.New()
	n := &model.Notification{RecipientID: actorID, RecipientKind: model.RoleCompany, Message: "m"}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doRequest(r, http.MethodGet, "/api/notifications/unread-count", actorID, model.RoleCompany)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}

func TestMarkAsRead(t *testing.T) {
	r, repo := setupNotificationRouter(t)

	actorID := uuid.New()
	n := &model.Notification{RecipientID: actorID, RecipientKind: model.RoleUser, Message: "m"}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doRequest(r, http.MethodPut, "/api/notifications/"+n.ID.String()+"/read", actorID, model.RoleUser)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	stored, err := repo.FindByID(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !stored.IsRead {
		t.Error("notification not marked read")
	}
}

func TestMarkAsReadForeignNotification(t *testing.T) {
	r, repo := setupNotificationRouter(t)

	owner := uuid.New()
	n := &model.Notification{RecipientID: owner, RecipientKind: model.RoleUser, Message: "m"}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doRequest(r, http.MethodPut, "/api/notifications/"+n.ID.String()+"/read", uuid.New(), model.RoleUser)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	stored, _ := repo.FindByID(context.Background(), n.ID)
	if stored.IsRead {
		t.Error("foreign actor managed to mark the notification read")
	}
}

func TestDeleteNotificationBadID(t *testing.T) {
	r, _ := setupNotificationRouter(t)

	w := doRequest(r, http.MethodDelete, "/api/notifications/not-a-uuid", uuid.New(), model.RoleUser)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
