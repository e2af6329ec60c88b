package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"govdash/internal/choropleth"
	"govdash/internal/i18n"
	"govdash/internal/mapview"
)

type countingRenderer struct {
	calls atomic.Uint64
}

func (r *countingRenderer) Render(_ context.Context, req mapview.RenderRequest) *mapview.View {
	n := r.calls.Add(1)
	return &mapview.View{Layer: req.Layer, Lang: req.Lang, Seq: n, Regions: []mapview.RegionView{}}
}

type HubSuite struct {
	suite.Suite
	renderer *countingRenderer
	hub      *Hub
	srv      *httptest.Server
	cancel   context.CancelFunc
	done     chan struct{}
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.renderer = &countingRenderer{}
	s.hub = NewHub(s.renderer,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(NewMetrics(prometheus.NewRegistry())),
	)
	s.srv = httptest.NewServer(http.HandlerFunc(s.hub.HandleStream))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = s.hub.Run(ctx)
	}()
}

func (s *HubSuite) TearDownTest() {
	s.cancel()
	<-s.done
	s.srv.Close()
}

func (s *HubSuite) dial(query string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/?" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func (s *HubSuite) read(conn *websocket.Conn) Message {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	var msg Message
	s.Require().NoError(json.Unmarshal(data, &msg))
	return msg
}

func (s *HubSuite) TestFirstFrameThenPushAfterPoll() {
	conn, _, err := s.dial("layer=updates&lang=hi")
	s.Require().NoError(err)
	defer conn.Close()

	first := s.read(conn)
	s.Equal("map", first.Type)
	s.Equal(choropleth.LayerUpdates, first.View.Layer)
	s.Equal(i18n.Hindi, first.View.Lang)

	s.Eventually(func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	s.hub.Notify(nil)

	next := s.read(conn)
	s.Greater(next.View.Seq, first.View.Seq)
}

func (s *HubSuite) TestClientsSharingAKeyShareOneRender() {
	a, _, err := s.dial("layer=migration")
	s.Require().NoError(err)
	defer a.Close()
	b, _, err := s.dial("layer=migration")
	s.Require().NoError(err)
	defer b.Close()
	s.read(a)
	s.read(b)
	s.Eventually(func() bool { return s.hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	before := s.renderer.calls.Load()
	s.hub.Notify(nil)
	fa := s.read(a)
	fb := s.read(b)
	s.Equal(fa.View.Seq, fb.View.Seq)
	s.Equal(before+1, s.renderer.calls.Load())
}

func (s *HubSuite) TestUnknownLayerIsRejectedBeforeUpgrade() {
	_, resp, err := s.dial("layer=rainfall")
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HubSuite) TestShutdownClosesClients() {
	conn, _, err := s.dial("layer=enrolment")
	s.Require().NoError(err)
	defer conn.Close()
	s.read(conn)
	s.Eventually(func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	s.cancel()
	<-s.done
	s.Equal(0, s.hub.Clients())

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err = conn.ReadMessage()
	s.Error(err)
}
