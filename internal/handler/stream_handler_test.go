package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grant-assistant-be/internal/dto"
	"grant-assistant-be/internal/pkg/logger"
	"grant-assistant-be/internal/pkg/serverutils"
	"grant-assistant-be/internal/service"
	internalWS "grant-assistant-be/internal/websocket"
	"grant-assistant-be/pkg/proposal"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sessionA = "aaaaaaaa-0000-4000-8000-000000000001"
	sessionB = "bbbbbbbb-0000-4000-8000-000000000002"
)

// sessionLookup knows a fixed set of sessions; only GetSession is used by the stream.
type sessionLookup struct {
	service.IProposalService
	known map[string]bool
}

func (s *sessionLookup) GetSession(_ context.Context, sessionID string) (*dto.SessionResponse, error) {
	if !s.known[sessionID] {
		return nil, service.ErrSessionNotFound
	}
	return &dto.SessionResponse{Id: sessionID, ScriptLength: proposal.DemoScript().Len()}, nil
}

type streamFixture struct {
	app  *fiber.App
	hub  *internalWS.Hub
	addr string
}

func newStreamFixture(t *testing.T) *streamFixture {
	t.Helper()

	hub := internalWS.NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	svc := &sessionLookup{known: map[string]bool{sessionA: true, sessionB: true}}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewStreamHandler(svc, hub, logger.NewNopLogger()).RegisterRoutes(app)
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendString(c.Params("id")) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()

	t.Cleanup(func() {
		_ = app.Shutdown()
		cancel()
	})
	return &streamFixture{app: app, hub: hub, addr: ln.Addr().String()}
}

func (f *streamFixture) dial(t *testing.T, sessionID string) *fastws.Conn {
	t.Helper()
	conn, _, err := fastws.DefaultDialer.Dial(fmt.Sprintf("ws://%s/api/proposal/v1/sessions/%s/ws", f.addr, sessionID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *fastws.Conn) internalWS.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame internalWS.Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestStreamHandler_RequiresUpgrade(t *testing.T) {
	f := newStreamFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/proposal/v1/sessions/"+sessionA+"/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestStreamHandler_UnknownSession(t *testing.T) {
	f := newStreamFixture(t)

	_, resp, err := fastws.DefaultDialer.Dial(fmt.Sprintf("ws://%s/api/proposal/v1/sessions/missing/ws", f.addr), nil)
	require.ErrorIs(t, err, fastws.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamHandler_SendsInitialSnapshot(t *testing.T) {
	f := newStreamFixture(t)
	conn := f.dial(t, sessionA)

	frame := readFrame(t, conn)
	assert.Equal(t, internalWS.FrameSnapshot, frame.Type)
	data, ok := frame.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, sessionA, data["id"])
}

func TestStreamHandler_ClientStaysOnSessionAfterOtherRequests(t *testing.T) {
	f := newStreamFixture(t)
	conn := f.dial(t, sessionA)
	readFrame(t, conn)

	require.Eventually(t, func() bool { return f.hub.ClientCount(sessionA) == 1 }, 2*time.Second, 10*time.Millisecond)

	for i := 0; i < 20; i++ {
		resp, err := http.Get(fmt.Sprintf("http://%s/ping/%s", f.addr, sessionB))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 1, f.hub.ClientCount(sessionA))
	assert.Equal(t, 0, f.hub.ClientCount(sessionB))

	f.hub.Send(sessionA, internalWS.FramePlayAudio, dto.PlayAudioFrame{AudioUrl: "/api/proposal/v1/audio/a1"})

	frame := readFrame(t, conn)
	assert.Equal(t, internalWS.FramePlayAudio, frame.Type)
	assert.Equal(t, map[string]interface{}{"audio_url": "/api/proposal/v1/audio/a1"}, frame.Data)
}

func TestStreamHandler_DisconnectUnregisters(t *testing.T) {
	f := newStreamFixture(t)
	conn := f.dial(t, sessionA)
	readFrame(t, conn)
	require.Eventually(t, func() bool { return f.hub.ClientCount(sessionA) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.hub.ClientCount(sessionA) == 0 }, 2*time.Second, 10*time.Millisecond)
}
