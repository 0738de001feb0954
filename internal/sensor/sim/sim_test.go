package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oralable/oralable/internal/sensor"
)

func TestScanRotationIncludesSensor(t *testing.T) {
	t.Parallel()

	tr := New("Oralable PPG")
	tr.Interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	advs, err := tr.Scan(ctx)
	require.NoError(t, err)

	seen := false
	for i := 0; i < 6; i++ {
		adv, ok := <-advs
		require.True(t, ok)
		if adv.UUID == tr.UUID {
			require.Equal(t, "Oralable PPG", adv.Name)
			seen = true
		}
	}
	require.True(t, seen)
}

func TestConnectRefusesUnknownDevice(t *testing.T) {
	t.Parallel()

	tr := New("")
	_, err := tr.Connect(context.Background(), sensor.Advertisement{UUID: 0xDEAD})
	require.Error(t, err)
}

func TestConnectStreamsFrames(t *testing.T) {
	t.Parallel()

	tr := New("")
	tr.Interval = time.Millisecond

	conn, err := tr.Connect(context.Background(), sensor.Advertisement{UUID: tr.UUID})
	require.NoError(t, err)
	defer conn.Close()

	info, err := conn.Info(context.Background())
	require.NoError(t, err)
	require.Equal(t, tr.UUID, info.UUID)
	require.Equal(t, "1.4.2", info.Firmware)

	select {
	case frame, ok := <-conn.Frames():
		require.True(t, ok)
		require.Len(t, frame.PPG, 25)
		require.Equal(t, tr.Battery, frame.Battery)
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
}

func TestCloseEndsStream(t *testing.T) {
	t.Parallel()

	tr := New("")
	tr.Interval = time.Millisecond

	conn, err := tr.Connect(context.Background(), sensor.Advertisement{UUID: tr.UUID})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-conn.Frames():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close")
		}
	}
}
