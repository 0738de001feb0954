// Package sim is a deterministic in-process sensor used for demo mode
// and tests. It advertises like the real hardware, accepts one
// connection at a time, and streams battery plus PPG frames.
package sim

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/oralable/oralable/internal/sensor"
)

// Transport simulates one Oralable sensor plus ambient noise devices.
type Transport struct {
	Name     string
	UUID     uint64
	Firmware string
	Battery  int
	Interval time.Duration // advertisement and frame cadence
}

// New returns a simulated sensor with plausible defaults.
func New(name string) *Transport {
	if name == "" {
		name = "Oralable PPG"
	}
	return &Transport{
		Name:     name,
		UUID:     0x07A1AB1E00000001,
		Firmware: "1.4.2",
		Battery:  87,
		Interval: 250 * time.Millisecond,
	}
}

func (t *Transport) interval() time.Duration {
	if t.Interval <= 0 {
		return 250 * time.Millisecond
	}
	return t.Interval
}

// Scan emits a fixed rotation of advertisements: two unrelated devices,
// then the simulated sensor, repeating until ctx is cancelled.
func (t *Transport) Scan(ctx context.Context) (<-chan sensor.Advertisement, error) {
	out := make(chan sensor.Advertisement)
	rotation := []sensor.Advertisement{
		{UUID: 0x1111111111111111, Name: "JBL Flip 6", RSSI: -71},
		{UUID: 0x2222222222222222, Name: "MX Master 3S", RSSI: -55},
		{UUID: t.UUID, Name: t.Name, RSSI: -48},
	}
	go func() {
		defer close(out)
		ticker := time.NewTicker(t.interval())
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- rotation[i%len(rotation)]:
				case <-ctx.Done():
					return
				}
				i++
			}
		}
	}()
	return out, nil
}

// Connect accepts only the simulated sensor's own uuid.
func (t *Transport) Connect(ctx context.Context, adv sensor.Advertisement) (sensor.Conn, error) {
	if adv.UUID != t.UUID {
		return nil, errors.New("sim: unknown device")
	}
	c := &conn{t: t, frames: make(chan sensor.Frame)}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	go c.run()
	return c, nil
}

type conn struct {
	t      *Transport
	frames chan sensor.Frame
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *conn) Info(ctx context.Context) (sensor.DeviceInfo, error) {
	return sensor.DeviceInfo{
		UUID:     c.t.UUID,
		Name:     c.t.Name,
		Firmware: c.t.Firmware,
		Battery:  c.t.Battery,
	}, nil
}

func (c *conn) Frames() <-chan sensor.Frame { return c.frames }

func (c *conn) Close() error {
	c.cancel()
	return nil
}

// run streams synthetic PPG: a clean pulse waveform at 25 samples per
// frame, battery draining one percent a minute.
func (c *conn) run() {
	defer close(c.frames)
	ticker := time.NewTicker(c.t.interval())
	defer ticker.Stop()
	battery := c.t.Battery
	start := time.Now()
	n := 0
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			drained := int(time.Since(start) / time.Minute)
			level := battery - drained
			if level < 0 {
				level = 0
			}
			frame := sensor.Frame{Battery: level, PPG: pulse(n, 25)}
			n += len(frame.PPG)
			select {
			case c.frames <- frame:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// pulse synthesizes count samples of a heartbeat-shaped waveform.
func pulse(offset, count int) []int32 {
	out := make([]int32, count)
	for i := range out {
		phase := float64(offset+i) / 25.0 * 2 * math.Pi * 1.2 // ~72 bpm
		out[i] = int32(2048 + 900*math.Sin(phase) + 180*math.Sin(3*phase))
	}
	return out
}
