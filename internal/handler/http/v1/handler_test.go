package v1

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/wildfire_broadcasting_system/internal/broadcast"
	"github.com/shenikar/wildfire_broadcasting_system/internal/config"
	"github.com/shenikar/wildfire_broadcasting_system/internal/grid"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/observability"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service/mocks"
)

// newTestHandler создает новый экземпляр Handler с мокированным сервисом и настоящим хабом
func newTestHandler(t *testing.T) (*Handler, *mocks.MockIncidentService, *broadcast.Hub, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockIncidentService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		StreamHeartbeat: time.Second,
	}

	hub := broadcast.NewHub(mockService, broadcast.DefaultSnapshotSize, broadcast.DefaultBufferSize,
		clockwork.NewRealClock(), logger, observability.NewMetricsForTesting())
	t.Cleanup(hub.Close)

	handler := NewHandler(mockService, hub, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logger))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, hub, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testIncident(id string) *models.Incident {
	return &models.Incident{
		ID:        id,
		Name:      "Test Fire " + id,
		Location:  models.Location{Region: "California", GridCell: models.GridCell{X: 3, Y: 7}},
		StartDate: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusActive,
		Size:      models.Size{Acres: 1500, ContainmentPercentage: 20},
		Conditions: models.Conditions{
			WindSpeed: 12, WindDirection: "NE", Temperature: 90, Humidity: 15,
		},
		Resources: models.Resources{PersonnelCount: 300, AircraftCount: 4, VehiclesCount: 40},
		Cause:     "Lightning",
		FuelTypes: []string{"Grass"},
		UpdatedAt: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestListIncidents_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expected := []*models.Incident{testIncident("WF-1"), testIncident("WF-2")}

	mockService.EXPECT().
		ListIncidents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
			assert.Equal(t, models.StatusActive, filter.Status)
			assert.Equal(t, "California", filter.Region)
			require.NotNil(t, filter.MinAcres)
			assert.Equal(t, 100.0, *filter.MinAcres)
			require.NotNil(t, filter.GridX)
			assert.Equal(t, 3, *filter.GridX)
			assert.Nil(t, filter.GridY)
			assert.Nil(t, filter.MaxAcres)
			return expected, nil
		}).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?status=active&region=California&minAcres=100&gridX=3", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "WF-1", resp[0].ID)
	assert.Equal(t, "California", resp[0].Location.Region)
	assert.Equal(t, 3, resp[0].Location.GridCell.X)
	assert.Empty(t, resp[0].EvacuationOrders)
}

func TestListIncidents_EmptyFilterReturnsAll(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListIncidents(gomock.Any(), models.IncidentFilter{}).Return([]*models.Incident{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListIncidents_InvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "status=smouldering"},
		{"negative acres", "minAcres=-1"},
		{"non-numeric grid", "gridX=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, _, router := newTestHandler(t)
			mockService.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

			w := makeRequest(router, "GET", "/api/v1/incidents?"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListIncidents_ServiceError(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused")).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "service unavailable")
}

func TestGetIncident_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expected := testIncident("WF-42")

	mockService.EXPECT().GetIncident(gomock.Any(), "WF-42").Return(expected, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/WF-42", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WF-42", resp.ID)
	assert.Equal(t, expected.Name, resp.Name)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, 20.0, resp.Size.ContainmentPercentage)
}

func TestGetIncident_NotFound(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		GetIncident(gomock.Any(), "WF-404").
		Return(nil, fmt.Errorf("service: could not get incident: %w", models.ErrNotFound)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/WF-404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestGetIncident_ServiceError(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().GetIncident(gomock.Any(), "WF-1").Return(nil, errors.New("database error")).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/WF-1", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "database error")
}

func TestUpdateIncident_MergesOnlySuppliedFields(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	updated := testIncident("WF-1")
	updated.Conditions.WindSpeed = 35

	mockService.EXPECT().
		UpdateIncident(gomock.Any(), "WF-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, patch models.IncidentPatch) (*models.Incident, error) {
			require.NotNil(t, patch.Conditions)
			require.NotNil(t, patch.Conditions.WindSpeed)
			assert.Equal(t, 35.0, *patch.Conditions.WindSpeed)
			assert.Nil(t, patch.Conditions.Humidity)
			assert.Nil(t, patch.Conditions.WindDirection)
			assert.Nil(t, patch.Status)
			assert.Nil(t, patch.Size)
			assert.Empty(t, patch.AppendEvacuationOrders)
			return updated, nil
		}).Times(1)

	w := makeRequest(router, "PATCH", "/api/v1/incidents/WF-1", bytes.NewBufferString(`{"conditions":{"wind_speed":35}}`))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 35.0, resp.Conditions.WindSpeed)
	assert.Equal(t, "NE", resp.Conditions.WindDirection)
}

func TestUpdateIncident_EvacuationOrderGetsIssuedAt(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	before := time.Now().UTC().Add(-time.Second)

	mockService.EXPECT().
		UpdateIncident(gomock.Any(), "WF-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, patch models.IncidentPatch) (*models.Incident, error) {
			require.Len(t, patch.AppendEvacuationOrders, 1)
			order := patch.AppendEvacuationOrders[0]
			assert.Equal(t, "Pine Valley Area", order.Area)
			assert.Equal(t, models.EvacuationMandatory, order.Status)
			assert.True(t, order.IssuedAt.After(before))
			return testIncident("WF-1"), nil
		}).Times(1)

	body := `{"evacuation_orders":[{"area":"Pine Valley Area","status":"mandatory"}]}`
	w := makeRequest(router, "PATCH", "/api/v1/incidents/WF-1", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateIncident_InvalidJSON(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().UpdateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "PATCH", "/api/v1/incidents/WF-1", bytes.NewBufferString(`{"name": "test"`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestUpdateIncident_ValidationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"containment above 100", `{"size":{"containment_percentage":150}}`},
		{"unknown status", `{"status":"smouldering"}`},
		{"unknown wind direction", `{"conditions":{"wind_direction":"NNE"}}`},
		{"negative personnel", `{"resources":{"personnel_count":-5}}`},
		{"order without area", `{"evacuation_orders":[{"status":"warning"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, _, router := newTestHandler(t)
			mockService.EXPECT().UpdateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, "PATCH", "/api/v1/incidents/WF-1", bytes.NewBufferString(tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateIncident_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", fmt.Errorf("service: could not update incident: %w", models.ErrNotFound), http.StatusNotFound, "incident not found"},
		{"illegal transition", fmt.Errorf("%w: status cannot move from contained to active", models.ErrValidation), http.StatusBadRequest, "validation error"},
		{"store failure", errors.New("connection reset"), http.StatusServiceUnavailable, "service unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, _, router := newTestHandler(t)
			mockService.EXPECT().UpdateIncident(gomock.Any(), "WF-1", gomock.Any()).Return(nil, tt.err).Times(1)

			w := makeRequest(router, "PATCH", "/api/v1/incidents/WF-1", bytes.NewBufferString(`{"status":"active"}`))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestFindInGridRange_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	incident := testIncident("WF-7")
	expectedRange := models.GridRange{Region: "California", MinX: 2, MaxX: 4, MinY: 0, MaxY: 9}

	mockService.EXPECT().
		FindInGridRange(gomock.Any(), expectedRange).
		Return(&models.GridRangeResult{
			Region:    "California",
			GridRange: models.GridRangeBounds{X: models.Bounds{Min: 2, Max: 4}, Y: models.Bounds{Min: 0, Max: 9}},
			Count:     1,
			Incidents: []*models.Incident{incident},
		}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/grid/California?minX=2&maxX=4&minY=0&maxY=9", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp GridRangeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "California", resp.Region)
	assert.Equal(t, BoundsDTO{Min: 2, Max: 4}, resp.GridRange.X)
	assert.Equal(t, BoundsDTO{Min: 0, Max: 9}, resp.GridRange.Y)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Incidents, 1)
	assert.Equal(t, "WF-7", resp.Incidents[0].ID)
}

func TestFindInGridRange_InvalidBounds(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing maxY", "minX=0&maxX=4&minY=0"},
		{"no bounds", ""},
		{"negative minX", "minX=-1&maxX=4&minY=0&maxY=9"},
		{"non-numeric", "minX=a&maxX=4&minY=0&maxY=9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, _, router := newTestHandler(t)
			mockService.EXPECT().FindInGridRange(gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, "GET", "/api/v1/incidents/grid/California?"+tt.query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid grid range")
		})
	}
}

func TestFindInGridRange_MinAboveMax(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		FindInGridRange(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service: %w", models.ErrInvalidRange)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/grid/California?minX=5&maxX=2&minY=0&maxY=9", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid grid range")
}

func TestListRegions(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().Regions().Return(grid.DefaultRegions[:2]).Times(1)

	w := makeRequest(router, "GET", "/api/v1/regions", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []RegionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "California", resp[0].Name)
	assert.Equal(t, 10, resp[0].Width)
	assert.Equal(t, 20, resp[0].Height)
}

func TestHealthCheck(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// sseReader читает события text/event-stream по одному
type sseReader struct {
	r *bufio.Reader
}

func (s *sseReader) next(t *testing.T) (event string, data string) {
	t.Helper()
	for {
		line, err := s.r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "" && event != "":
			return event, data
		}
	}
}

func openSSE(t *testing.T, ctx context.Context, url string) *sseReader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	return &sseReader{r: bufio.NewReader(resp.Body)}
}

func TestStreamIncidents_SnapshotThenUpdates(t *testing.T) {
	// Подготовка
	_, mockService, hub, router := newTestHandler(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	// Ожидания
	mockService.EXPECT().
		RecentIncidents(gomock.Any(), broadcast.DefaultSnapshotSize).
		Return([]*models.Incident{testIncident("WF-1"), testIncident("WF-2")}, nil).
		Times(1)

	// Действие
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := openSSE(t, ctx, srv.URL+"/api/v1/incidents/stream")

	// Проверки: сначала снимок
	event, data := stream.next(t)
	assert.Equal(t, "snapshot", event)
	var snapshot StreamEvent
	require.NoError(t, json.Unmarshal([]byte(data), &snapshot))
	assert.Equal(t, "snapshot", snapshot.Type)
	require.Len(t, snapshot.Incidents, 2)
	assert.Equal(t, "WF-1", snapshot.Incidents[0].ID)

	// затем живое обновление
	changed := testIncident("WF-2")
	changed.Size.Acres = 2500
	hub.Publish(changed)

	event, data = stream.next(t)
	assert.Equal(t, "update", event)
	var update StreamEvent
	require.NoError(t, json.Unmarshal([]byte(data), &update))
	require.Len(t, update.Incidents, 1)
	assert.Equal(t, "WF-2", update.Incidents[0].ID)
	assert.Equal(t, 2500.0, update.Incidents[0].Size.Acres)

	// Отключение клиента освобождает подписку
	cancel()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamIncidents_Heartbeat(t *testing.T) {
	handler, mockService, _, router := newTestHandler(t)
	handler.cfg.StreamHeartbeat = 20 * time.Millisecond
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	mockService.EXPECT().RecentIncidents(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := openSSE(t, ctx, srv.URL+"/api/v1/incidents/stream")

	event, data := stream.next(t)
	assert.Equal(t, "snapshot", event)
	assert.Contains(t, data, `"incidents":[]`)

	event, _ = stream.next(t)
	assert.Equal(t, "heartbeat", event)
}

func TestStreamIncidents_SubscribeError(t *testing.T) {
	_, mockService, hub, router := newTestHandler(t)

	mockService.EXPECT().RecentIncidents(gomock.Any(), gomock.Any()).Return(nil, errors.New("store unavailable")).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/stream", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Zero(t, hub.Len())
}

func TestStreamWebSocket_SnapshotThenUpdates(t *testing.T) {
	// Подготовка
	_, mockService, hub, router := newTestHandler(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	// Ожидания
	mockService.EXPECT().
		RecentIncidents(gomock.Any(), broadcast.DefaultSnapshotSize).
		Return([]*models.Incident{testIncident("WF-1")}, nil).
		Times(1)

	// Действие
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/incidents/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// Проверки
	var snapshot StreamEvent
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "snapshot", snapshot.Type)
	require.Len(t, snapshot.Incidents, 1)

	hub.Publish(testIncident("WF-9"))

	var update StreamEvent
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "update", update.Type)
	require.Len(t, update.Incidents, 1)
	assert.Equal(t, "WF-9", update.Incidents[0].ID)

	// Закрытие соединения освобождает подписку
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
