package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/config"
	"github.com/wricardo/tactics-duel/game/engine"
	"github.com/wricardo/tactics-duel/game/service"
	"github.com/wricardo/tactics-duel/game/session"
	"github.com/wricardo/tactics-duel/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	OpenSessionFunc   func(ctx context.Context, out command.Sender, configName string) (*session.Actor, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error
	GetGameStateFunc  func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	ListConfigsFunc   func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc    func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc    func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) OpenSession(ctx context.Context, out command.Sender, configName string) (*session.Actor, error) {
	if m.OpenSessionFunc != nil {
		return m.OpenSessionFunc(ctx, out, configName)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{Config: "test-config"}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.GameConfig{
		Name:        configName,
		Description: "Test config",
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub(mockService)
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	sessions := func(ctx context.Context) ([]*service.SessionInfo, error) {
		return []*service.SessionInfo{
			{ID: "a", CreatedAt: now.Add(-3 * time.Minute), LastActivity: now.Add(-1 * time.Minute)},
			{ID: "b", CreatedAt: now.Add(-2 * time.Minute), LastActivity: now.Add(-3 * time.Minute)},
			{ID: "c", CreatedAt: now.Add(-1 * time.Minute), LastActivity: now.Add(-2 * time.Minute)},
		}, nil
	}

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockGameService)
		expectedStatus int
		expectedIDs    []string
	}{
		{
			name:           "Default sort by activity desc",
			setupMock:      func(m *MockGameService) { m.ListSessionsFunc = sessions },
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"a", "c", "b"},
		},
		{
			name:           "Sort by created asc",
			query:          "?sort=created&order=asc",
			setupMock:      func(m *MockGameService) { m.ListSessionsFunc = sessions },
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"a", "b", "c"},
		},
		{
			name:           "Limit",
			query:          "?sort=created&limit=1",
			setupMock:      func(m *MockGameService) { m.ListSessionsFunc = sessions },
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"c"},
		},
		{
			name:           "Empty list",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{},
		},
		{
			name: "Service error",
			setupMock: func(m *MockGameService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return nil, fmt.Errorf("boom")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedIDs == nil {
				return
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != len(tt.expectedIDs) {
				t.Errorf("Expected count %d, got %d", len(tt.expectedIDs), resp.Count)
			}
			for i, id := range tt.expectedIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Found",
			expectedStatus: http.StatusOK,
		},
		{
			name: "Not found",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, id string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %s", session.ErrSessionNotFound, id)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Invalid ID",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, id string) (*service.SessionInfo, error) {
					return nil, session.ErrInvalidSessionID
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Closed while reading",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, id string) (*service.SessionInfo, error) {
					return nil, session.ErrSessionClosed
				}
			},
			expectedStatus: http.StatusGone,
		},
		{
			name: "Busy session",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, id string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to read session: %w", context.DeadlineExceeded)
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/sess-123", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code == http.StatusOK {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected sess-123, got %s", resp.ID)
				}
			} else {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected error message")
				}
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	t.Run("Deletes", func(t *testing.T) {
		var deleted string
		mockService := &MockGameService{
			DeleteSessionFunc: func(ctx context.Context, id string) error {
				deleted = id
				return nil
			},
		}
		server := setupTestServer(mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/sess-1", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if deleted != "sess-1" {
			t.Errorf("Expected sess-1 deleted, got %q", deleted)
		}
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := &MockGameService{
			DeleteSessionFunc: func(ctx context.Context, id string) error {
				return session.ErrSessionNotFound
			},
		}
		server := setupTestServer(mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/missing", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestGetGameState(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, id string) (*engine.Snapshot, error) {
			if id != "sess-1" {
				return nil, session.ErrSessionNotFound
			}
			return &engine.Snapshot{Config: "classic", BoardWidth: 9, BoardHeight: 5, Turn: engine.Player1, Round: 1}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/sess-1/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var snap engine.Snapshot
	parseResponse(t, w, &snap)
	if snap.Config != "classic" || snap.BoardWidth != 9 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/other/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListConfigs(t *testing.T) {
	t.Run("Lists", func(t *testing.T) {
		mockService := &MockGameService{
			ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
				return []*service.ConfigInfo{{ConfigID: "classic", Name: "Classic"}}, nil
			},
		}
		server := setupTestServer(mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))

		var resp []*service.ConfigInfo
		parseResponse(t, w, &resp)
		if len(resp) != 1 || resp[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs: %+v", resp)
		}
	})

	t.Run("Nil list encodes as empty array", func(t *testing.T) {
		mockService := &MockGameService{
			ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) { return nil, nil },
		}
		server := setupTestServer(mockService)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))

		if strings.TrimSpace(w.Body.String()) != "[]" {
			t.Errorf("Expected [], got %s", w.Body.String())
		}
	})
}

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedName   string
	}{
		{"By name", "/api/configs/classic", http.StatusOK, "classic"},
		{"With suffix", "/api/configs/classic.json", http.StatusOK, "classic"},
		{"Missing", "/api/configs/missing", http.StatusNotFound, ""},
	}

	mockService := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.GameConfig, error) {
			if name == "missing" {
				return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, name)
			}
			return &engine.GameConfig{Name: name}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", tt.path, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedName != "" {
				var resp engine.GameConfig
				parseResponse(t, w, &resp)
				if resp.Name != tt.expectedName {
					t.Errorf("Expected %s, got %s", tt.expectedName, resp.Name)
				}
			}
		})
	}
}

func TestCreateConfig(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		saveErr        error
		expectedStatus int
	}{
		{"Saves", map[string]interface{}{"config_id": "mine", "config": engine.DefaultGameConfig()}, nil, http.StatusCreated},
		{"Missing id", map[string]interface{}{"config": engine.DefaultGameConfig()}, nil, http.StatusBadRequest},
		{"Invalid rule set", map[string]interface{}{"config_id": "bad", "config": engine.DefaultGameConfig()}, service.ErrInvalidConfig, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var savedAs string
			mockService := &MockGameService{
				SaveConfigFunc: func(ctx context.Context, name string, config *engine.GameConfig) error {
					savedAs = name
					return tt.saveErr
				},
			}
			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/configs", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusCreated && savedAs != "mine" {
				t.Errorf("Expected save as mine, got %q", savedAs)
			}
		})
	}

	t.Run("Malformed body", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/configs", strings.NewReader("{"))
		server.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/health", nil))

	var resp struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	parseResponse(t, w, &resp)
	if resp.Status != "healthy" || resp.Sessions != 2 {
		t.Errorf("Unexpected health response: %+v", resp)
	}
}

func TestMountsAndStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("renderer"), 0644); err != nil {
		t.Fatalf("Failed to write index.html: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("bundle"), 0644); err != nil {
		t.Fatalf("Failed to write app.js: %v", err)
	}

	mounted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mounted"))
	})
	mockService := &MockGameService{}
	hub := websocket.NewHub(mockService)
	server := NewServer(mockService, hub, WithStaticDir(dir), WithMount("/mcp", mounted))

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/mcp", nil))
	if w.Body.String() != "mounted" {
		t.Errorf("Expected mounted handler, got %q", w.Body.String())
	}

	tests := []struct {
		path string
		want string
	}{
		{"/", "renderer"},
		{"/app.js", "bundle"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("Expected static file, got %d %q", w.Code, w.Body.String())
			}
		})
	}
}

func TestWebSocketSessionLifecycle(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)
	hub := websocket.NewHub(svc)
	go hub.Run()

	httpServer := httptest.NewServer(NewServer(svc, hub))
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("Expected actorReady: %v", err)
	}

	var listed struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	resp, err := http.Get(httpServer.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("List request failed: %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(listed.Sessions))
	}
	id := listed.Sessions[0].ID

	resp, err = http.Get(httpServer.URL + "/api/sessions/" + id + "/state")
	if err != nil {
		t.Fatalf("State request failed: %v", err)
	}
	var snap engine.Snapshot
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if snap.Turn != engine.Player1 || len(snap.Units) != 2 {
		t.Errorf("Expected fresh game with two avatars, got turn %d and %d units", snap.Turn, len(snap.Units))
	}

	req, _ := http.NewRequest("DELETE", httpServer.URL+"/api/sessions/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on delete, got %d", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
