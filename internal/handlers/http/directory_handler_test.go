package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/internal/infrastructure/middleware"
	"huddle/internal/infrastructure/stores/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeDirectory is a deterministic stand-in for the directory service so
// handler tests do not depend on asynchronous log delivery.
type fakeDirectory struct {
	channels  []*domain.Channel
	active    domain.ChannelID
	selected  bool
	createErr error
}

func (f *fakeDirectory) Subscribe(ctx context.Context) error { return nil }
func (f *fakeDirectory) Unsubscribe() error                  { return nil }

func (f *fakeDirectory) Channels() []*domain.Channel { return f.channels }

func (f *fakeDirectory) ActiveChannel() (domain.ChannelID, bool) { return f.active, f.selected }

func (f *fakeDirectory) CreateChannel(ctx context.Context, name, details string, creator *domain.Identity) (*domain.Channel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Channel{
		ID:      "generated-id",
		Name:    name,
		Details: details,
		CreatedBy: domain.Creator{
			Name:      creator.DisplayName,
			AvatarURL: creator.AvatarURL,
		},
	}, nil
}

func (f *fakeDirectory) SelectChannel(id domain.ChannelID) error {
	for _, ch := range f.channels {
		if ch.ID == id {
			f.active = id
			f.selected = true
			return nil
		}
	}
	return domain.ErrChannelNotFound
}

func (f *fakeDirectory) AddObserver(observer ports.DirectoryObserver) {}

func stubAuth(uid domain.UserID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uid)
		c.Next()
	}
}

func newDirectoryRouter(t *testing.T, directory ports.DirectoryService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ids := memory.NewIdentityStore()
	err := ids.Create(context.Background(), &domain.Identity{
		UID:         "u1",
		DisplayName: "alice",
		AvatarURL:   "http://blobs/avatars/user/u1",
	}, "hash")
	assert.NoError(t, err)

	router := gin.New()
	router.Use(middleware.ErrorHandlerMiddleware(zap.NewNop().Sugar()))
	NewDirectoryHandler(directory, ids).SetupRoutes(router, stubAuth("u1"))
	return router
}

func TestDirectoryHandler_ListChannels(t *testing.T) {
	directory := &fakeDirectory{
		channels: []*domain.Channel{
			{ID: "c1", Name: "general", Details: "talk"},
			{ID: "c2", Name: "random", Details: "noise"},
		},
		active:   "c1",
		selected: true,
	}
	router := newDirectoryRouter(t, directory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Channels []domain.Channel `json:"channels"`
		ActiveID domain.ChannelID `json:"active_id"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Channels, 2)
	assert.Equal(t, domain.ChannelID("c1"), body.ActiveID)
}

func TestDirectoryHandler_ListChannelsBeforeFirstRecord(t *testing.T) {
	router := newDirectoryRouter(t, &fakeDirectory{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "active_id")
}

func TestDirectoryHandler_CreateChannel(t *testing.T) {
	router := newDirectoryRouter(t, &fakeDirectory{})

	payload, _ := json.Marshal(CreateChannelRequest{Name: "general", Details: "daily talk"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/channels", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var channel domain.Channel
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &channel))
	assert.Equal(t, "general", channel.Name)
	assert.Equal(t, "alice", channel.CreatedBy.Name)
	assert.Equal(t, "http://blobs/avatars/user/u1", channel.CreatedBy.AvatarURL)
}

func TestDirectoryHandler_CreateChannelRejectsMissingFields(t *testing.T) {
	router := newDirectoryRouter(t, &fakeDirectory{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/channels", bytes.NewBufferString(`{"name":"general"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION")
}

func TestDirectoryHandler_CreateChannelPersistenceFailure(t *testing.T) {
	router := newDirectoryRouter(t, &fakeDirectory{createErr: domain.ErrPersistenceFailed})

	payload, _ := json.Marshal(CreateChannelRequest{Name: "general", Details: "daily talk"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/channels", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "PERSISTENCE")
}

func TestDirectoryHandler_SelectChannel(t *testing.T) {
	directory := &fakeDirectory{
		channels: []*domain.Channel{{ID: "c1", Name: "general"}},
	}
	router := newDirectoryRouter(t, directory)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/channels/c1/select", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ChannelID("c1"), directory.active)
}

func TestDirectoryHandler_SelectUnknownChannel(t *testing.T) {
	router := newDirectoryRouter(t, &fakeDirectory{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/channels/missing/select", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
