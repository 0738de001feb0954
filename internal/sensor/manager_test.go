package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTransport hands out a scripted advertisement stream and connection.
type fakeTransport struct {
	advs      []Advertisement
	conn      *fakeConn
	connectTo uint64
}

func (f *fakeTransport) Scan(ctx context.Context) (<-chan Advertisement, error) {
	out := make(chan Advertisement, len(f.advs))
	for _, a := range f.advs {
		out <- a
	}
	close(out)
	return out, nil
}

func (f *fakeTransport) Connect(ctx context.Context, adv Advertisement) (Conn, error) {
	if adv.UUID != f.connectTo {
		return nil, errors.New("refused")
	}
	return f.conn, nil
}

type fakeConn struct {
	info   DeviceInfo
	frames chan Frame
	closed bool
}

func (c *fakeConn) Info(ctx context.Context) (DeviceInfo, error) { return c.info, nil }
func (c *fakeConn) Frames() <-chan Frame                         { return c.frames }
func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func waitFor(t *testing.T, ch <-chan State, pred func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func newFake() *fakeTransport {
	return &fakeTransport{
		advs: []Advertisement{
			{UUID: 1, Name: "Unrelated Speaker", RSSI: -70},
			{UUID: 42, Name: "Oralable PPG", RSSI: -50},
		},
		connectTo: 42,
		conn: &fakeConn{
			info:   DeviceInfo{UUID: 42, Name: "Oralable PPG", Firmware: "1.4.2", Battery: 80},
			frames: make(chan Frame, 8),
		},
	}
}

func TestToggleScanningConnectsToMatchingDevice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ft := newFake()
	m := NewManager(ctx, ft, nil, "Oralable PPG", nil)

	ch, cancel := m.Subscribe(8)
	defer cancel()

	require.False(t, m.State().Scanning)
	m.ToggleScanning(ctx)

	st := waitFor(t, ch, func(s State) bool { return s.Connected })
	require.Equal(t, "Oralable PPG", st.DeviceName)
	require.Equal(t, 80, st.Data.Battery)
	require.Equal(t, "1.4.2", st.Data.Firmware)
	require.Equal(t, uint64(42), st.Data.UUID)

	// Scanning flag drops once connected.
	waitFor(t, ch, func(s State) bool { return s.Connected && !s.Scanning })
}

func TestFramesUpdateBatteryAndSamples(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ft := newFake()
	m := NewManager(ctx, ft, nil, "Oralable PPG", nil)

	ch, cancel := m.Subscribe(8)
	defer cancel()

	m.ToggleScanning(ctx)
	waitFor(t, ch, func(s State) bool { return s.Connected })

	ft.conn.frames <- Frame{Battery: 79, PPG: make([]int32, 25)}
	st := waitFor(t, ch, func(s State) bool { return s.Data.Samples == 25 })
	require.Equal(t, 79, st.Data.Battery)

	ft.conn.frames <- Frame{Battery: 78, PPG: make([]int32, 25)}
	waitFor(t, ch, func(s State) bool { return s.Data.Samples == 50 })
}

func TestDisconnectPublishesDisconnected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ft := newFake()
	m := NewManager(ctx, ft, nil, "Oralable PPG", nil)

	ch, cancel := m.Subscribe(8)
	defer cancel()

	m.ToggleScanning(ctx)
	waitFor(t, ch, func(s State) bool { return s.Connected })

	m.Disconnect()
	waitFor(t, ch, func(s State) bool { return !s.Connected })
	require.Eventually(t, func() bool { return ft.conn.closed }, time.Second, 5*time.Millisecond)
}

func TestToggleScanningStops(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	// No advertisement ever matches: the scan stays active until toggled off.
	m := NewManager(ctx, &hangingTransport{}, nil, "Oralable PPG", nil)

	ch, cancel := m.Subscribe(8)
	defer cancel()

	m.ToggleScanning(ctx)
	waitFor(t, ch, func(s State) bool { return s.Scanning })

	m.ToggleScanning(ctx)
	waitFor(t, ch, func(s State) bool { return !s.Scanning })
	require.False(t, m.State().Connected)
}

// hangingTransport never emits an advertisement.
type hangingTransport struct{}

func (h *hangingTransport) Scan(ctx context.Context) (<-chan Advertisement, error) {
	out := make(chan Advertisement)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out, nil
}

func (h *hangingTransport) Connect(ctx context.Context, adv Advertisement) (Conn, error) {
	return nil, errors.New("unreachable")
}

func TestClearLogsEmptiesBuffer(t *testing.T) {
	t.Parallel()

	m := NewManager(context.Background(), &hangingTransport{}, nil, "Oralable PPG", nil)
	m.AppendLog("one")
	m.AppendLog("two")
	logs := m.Logs()
	require.Len(t, logs, 2)
	require.Equal(t, "one", logs[0].Message)
	require.False(t, logs[0].At.IsZero())

	m.ClearLogs()
	require.Len(t, m.Logs(), 0)

	// Clearing an already empty buffer stays empty.
	m.ClearLogs()
	require.Len(t, m.Logs(), 0)
}

func TestManagerLoggingFeedsDiagnosticLog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager(ctx, &hangingTransport{}, nil, "Oralable PPG", nil)

	m.ToggleScanning(ctx)
	require.Eventually(t, func() bool { return len(m.Logs()) > 0 }, time.Second, 5*time.Millisecond)
	m.ToggleScanning(ctx)
}

func TestMatchName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		advertised, wanted string
		want               bool
	}{
		{"Oralable PPG", "Oralable PPG", true},
		{"oralable ppg", "Oralable PPG", true},
		{"Oralable PP", "Oralable PPG", true},   // truncated advertisement
		{"Oralable PPG2", "Oralable PPG", true}, // distance 1
		{"Oralable", "Oralable PPG", true},      // prefix
		{"JBL Flip 6", "Oralable PPG", false},
		{"", "Oralable PPG", false},
		{"Oralable PPG", "", false},
		{"Oral", "Something else entirely", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, matchName(c.advertised, c.wanted), "%q vs %q", c.advertised, c.wanted)
	}
}

func TestFormatUUID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "07A1AB1E00000001", FormatUUID(0x07A1AB1E00000001))
	require.Equal(t, "0000000000000000", FormatUUID(0))
}
