package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/dashboard"
	apperrors "enrolpulse/internal/errors"
	"enrolpulse/internal/shared/testutil"
	"enrolpulse/pkg/contracts/events"
)

// fakeConn is an in-memory Connection. Frames pushed to incoming are read by
// ReadPump; text frames written by WritePump are recorded.
type fakeConn struct {
	incoming chan []byte
	closed   chan struct{}
	once     sync.Once

	mu      sync.Mutex
	written [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{incoming: make(chan []byte, 16), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case m := <-f.incoming:
		return websocket.TextMessage, m, nil
	case <-f.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("connection closed")
	default:
	}
	if messageType == websocket.TextMessage {
		f.mu.Lock()
		f.written = append(f.written, data)
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetReadLimit(int64)               {}
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) RemoteAddr() string               { return "127.0.0.1:50000" }

func (f *fakeConn) push(msg string) {
	f.incoming <- []byte(msg)
}

type frame struct {
	Type events.MessageType `json:"type"`
	Data json.RawMessage    `json:"data"`
}

// waitFrames waits until n frames were written and decodes them
func (f *fakeConn) waitFrames(t *testing.T, n int) []frame {
	t.Helper()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.written) >= n
	}, 2*time.Second, 5*time.Millisecond, "expected %d frames", n)

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]frame, len(f.written))
	for i, raw := range f.written {
		require.NoError(t, json.Unmarshal(raw, &out[i]))
	}
	return out
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error) {
	args := m.Called(req)
	vm, _ := args.Get(0).(*dashboard.ViewModel)
	return vm, args.Error(1)
}

func (m *mockRenderer) Regions(ctx context.Context) ([]string, error) {
	args := m.Called()
	regions, _ := args.Get(0).([]string)
	return regions, args.Error(1)
}

func newRenderer() *mockRenderer {
	r := &mockRenderer{}
	r.On("Regions").Return([]string{"All", "Kerala", "Punjab"}, nil)
	r.On("Render", dashboard.Request{Region: "All"}).Return(&dashboard.ViewModel{Region: "All"}, nil)
	r.On("Render", dashboard.Request{Region: "Punjab"}).Return(&dashboard.ViewModel{Region: "Punjab", StateSelected: true}, nil)
	r.On("Render", dashboard.Request{Region: "Punjab", Insights: true}).
		Return(&dashboard.ViewModel{Region: "Punjab", StateSelected: true, Insights: []string{"• insight"}}, nil)
	r.On("Render", dashboard.Request{Region: "Atlantis"}).
		Return(nil, apperrors.NewAppError(apperrors.ErrTypeValidation, `region "Atlantis" is not in the dataset`, errors.New("unknown region")))
	return r
}

func startSession(t *testing.T) (*Hub, *Client, *fakeConn, *mockRenderer) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	renderer := newRenderer()
	hub := NewHub(renderer, logger)
	hub.Start()
	t.Cleanup(hub.Stop)

	conn := newFakeConn()
	client := ServeWS(hub, conn, "trace-1", logger)
	t.Cleanup(func() { conn.Close() })

	frames := conn.waitFrames(t, 1)
	require.Equal(t, events.MessageTypeConnect, frames[0].Type)
	return hub, client, conn, renderer
}

func decodeVM(t *testing.T, f frame) dashboard.ViewModel {
	t.Helper()
	require.Equal(t, events.MessageTypeDashboard, f.Type)
	var vm dashboard.ViewModel
	require.NoError(t, json.Unmarshal(f.Data, &vm))
	return vm
}

func decodeError(t *testing.T, f frame) events.ErrorPayload {
	t.Helper()
	require.Equal(t, events.MessageTypeError, f.Type)
	var p events.ErrorPayload
	require.NoError(t, json.Unmarshal(f.Data, &p))
	return p
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil, slog.Default())
	assert.Equal(t, 0, hub.ClientCount())
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestSession_ConnectMessage(t *testing.T) {
	hub, client, conn, _ := startSession(t)

	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, "All", client.Region())

	var payload events.ConnectPayload
	require.NoError(t, json.Unmarshal(conn.waitFrames(t, 1)[0].Data, &payload))
	assert.Equal(t, client.ID(), payload.ClientID)
	assert.Equal(t, events.ProtocolName, payload.Protocol)
	assert.Equal(t, []string{"All", "Kerala", "Punjab"}, payload.Regions)
}

func TestSession_SelectPersistsRegion(t *testing.T) {
	_, client, conn, _ := startSession(t)

	conn.push(`{"type":"select","data":{"state":"Punjab"}}`)
	frames := conn.waitFrames(t, 2)
	vm := decodeVM(t, frames[1])
	assert.Equal(t, "Punjab", vm.Region)
	assert.Empty(t, vm.Insights)
	assert.Equal(t, "Punjab", client.Region())
}

func TestSession_InsightsAreOneShot(t *testing.T) {
	hub, client, conn, renderer := startSession(t)

	conn.push(`{"type":"select","data":{"state":"Punjab"}}`)
	conn.push(`{"type":"insights"}`)
	frames := conn.waitFrames(t, 3)

	vm := decodeVM(t, frames[2])
	assert.Equal(t, "Punjab", vm.Region)
	assert.Equal(t, []string{"• insight"}, vm.Insights)
	assert.Equal(t, "Punjab", client.Region())

	// a later refresh renders the same selection without insights
	hub.BroadcastDataUpdate(events.DataUpdatePayload{Fingerprint: "abc", Rows: 6})
	frames = conn.waitFrames(t, 5)
	assert.Empty(t, decodeVM(t, frames[4]).Insights)
	renderer.AssertCalled(t, "Render", dashboard.Request{Region: "Punjab", Insights: true})
}

func TestSession_UnknownRegion(t *testing.T) {
	_, client, conn, _ := startSession(t)

	conn.push(`{"type":"select","data":{"state":"Atlantis"}}`)
	frames := conn.waitFrames(t, 2)

	p := decodeError(t, frames[1])
	assert.Equal(t, events.ErrCodeInvalidRegion, p.Code)
	assert.Contains(t, p.Message, "Atlantis")
	assert.Equal(t, "All", client.Region(), "failed selection keeps the previous region")
}

func TestSession_BadFrames(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantType events.MessageType
		wantCode string
	}{
		{"not json", `hello`, events.MessageTypeError, events.ErrCodeInvalidFrame},
		{"select without data", `{"type":"select"}`, events.MessageTypeError, events.ErrCodeInvalidFrame},
		{"unknown type", `{"type":"subscribe"}`, events.MessageTypeError, events.ErrCodeUnsupportedType},
		{"ping", `{"type":"ping"}`, events.MessageTypePong, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, conn, _ := startSession(t)

			conn.push(tt.frame)
			frames := conn.waitFrames(t, 2)
			assert.Equal(t, tt.wantType, frames[1].Type)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, frames[1]).Code)
			}
		})
	}
}

func TestHub_BroadcastDataUpdate(t *testing.T) {
	hub, _, conn, _ := startSession(t)

	hub.BroadcastDataUpdate(events.DataUpdatePayload{Fingerprint: "f1", Rows: 7})
	frames := conn.waitFrames(t, 3)

	require.Equal(t, events.MessageTypeDataUpdate, frames[1].Type)
	var p events.DataUpdatePayload
	require.NoError(t, json.Unmarshal(frames[1].Data, &p))
	assert.Equal(t, "f1", p.Fingerprint)
	assert.Equal(t, 7, p.Rows)

	assert.Equal(t, "All", decodeVM(t, frames[2]).Region)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, _, conn, _ := startSession(t)
	require.Equal(t, 1, hub.ClientCount())

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)

	metrics := hub.GetHubMetrics()
	assert.Equal(t, int64(1), metrics["total_connections"])
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := NewHub(nil, slog.Default())
	hub.Start()
	hub.Stop()
	assert.NotPanics(t, hub.Stop)
}

func TestServeWS_GorillaRoundTrip(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(newRenderer(), logger)
	hub.Start()
	defer hub.Stop()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ServeWS(hub, WrapConn(conn), "", logger)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var connect frame
	require.NoError(t, conn.ReadJSON(&connect))
	assert.Equal(t, events.MessageTypeConnect, connect.Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "select",
		"data": map[string]string{"state": "Punjab"},
	}))

	var reply frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "Punjab", decodeVM(t, reply).Region)
}

func TestHub_SetKeepalive(t *testing.T) {
	hub := NewHub(nil, slog.Default())
	assert.Equal(t, pingPeriod, hub.pingPeriod)
	assert.Equal(t, pongWait, hub.pongWait)

	hub.SetKeepalive(30*time.Second, 60*time.Second)
	assert.Equal(t, 30*time.Second, hub.pingPeriod)
	assert.Equal(t, 60*time.Second, hub.pongWait)

	// ping must be shorter than pong
	hub.SetKeepalive(90*time.Second, 60*time.Second)
	assert.Equal(t, 30*time.Second, hub.pingPeriod)
}
