package server

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/motion-detector/internal/config"
	"github.com/ironsheep/motion-detector/internal/frame"
	"github.com/ironsheep/motion-detector/internal/motion"
	"github.com/ironsheep/motion-detector/internal/transport"
)

// grayRGB builds an RGB888 frame of level bg with a white square of side
// block in the top-left corner.
func grayRGB(w, h int, bg byte, block int) frame.Frame {
	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := bg
			if x < block && y < block {
				v = 255
			}
			i := (y*w + x) * 3
			data[i], data[i+1], data[i+2] = v, v, v
		}
	}
	return frame.Frame{Encoding: frame.EncodingRGB888, Width: w, Height: h, Data: data}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Model = motion.Params{}
	_, err = New(&cfg, nil)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.TargetWidth = 0
	_, err = New(&cfg, nil)
	assert.Error(t, err)
}

func TestRun_ListenFailure(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := config.Default()
	cfg.OutputAddr = "127.0.0.1:-1"

	s, err := New(&cfg, logger)
	require.NoError(t, err)
	assert.Error(t, s.Run(context.Background()))
}

func TestServer_EndToEnd(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	upstream := transport.NewHub(logger)
	upSrv := httptest.NewServer(upstream)
	defer upSrv.Close()
	defer upstream.Close()

	cfg := config.Default()
	cfg.InputURL = "ws" + strings.TrimPrefix(upSrv.URL, "http")
	cfg.TargetWidth = 64

	s, err := New(&cfg, logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	consumer, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+OutputPath, nil)
	require.NoError(t, err)
	defer consumer.Close()

	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return upstream.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, upstream.Publish(grayRGB(128, 96, 60, 0)))
	}
	require.NoError(t, upstream.Publish(frame.Frame{Width: 4, Height: 4}))
	moving := grayRGB(128, 96, 60, 64)
	require.NoError(t, upstream.Publish(moving))

	require.NoError(t, consumer.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, msg, err := consumer.ReadMessage()
	require.NoError(t, err)
	got, err := frame.Unmarshal(msg)
	require.NoError(t, err)
	assert.Equal(t, moving, got)

	require.Eventually(t, func() bool { return s.Stats().Received == 5 }, 2*time.Second, 5*time.Millisecond)
	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Forwarded)
	assert.Equal(t, uint64(3), stats.Still)
	assert.Equal(t, uint64(1), stats.DroppedUnsupported)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
