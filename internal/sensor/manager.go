// Package sensor owns the connection lifecycle for the Oralable PPG
// sensor: scanning, pairing, streaming, and the diagnostic log shown on
// the logs screen. Screens observe published state and call
// ToggleScanning/Disconnect; the manager is the only writer.
package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oralable/oralable/internal/database"
	"github.com/oralable/oralable/internal/database/repository"
	"github.com/oralable/oralable/internal/logging"
	"github.com/oralable/oralable/internal/pubsub"
)

// Data is the latest readings from the connected sensor.
type Data struct {
	Battery  int
	Firmware string
	UUID     uint64
	Samples  int // PPG samples received this connection
}

// State is the published device snapshot.
type State struct {
	Connected  bool
	Scanning   bool
	DeviceName string
	Data       Data
}

// Manager drives the sensor connection state machine.
type Manager struct {
	store     *pubsub.Store[State]
	transport Transport
	devices   *repository.DeviceRepo
	preferred string
	log       logging.Logger

	mu         sync.Mutex
	stopScan   context.CancelFunc
	stopStream context.CancelFunc
	known      []string // remembered device names for fuzzy re-pair

	logMu sync.Mutex
	logs  []LogEntry
}

// LogEntry is one diagnostic log line with its capture time. Rendering,
// including the timestamp format and timezone, is the caller's concern.
type LogEntry struct {
	At      time.Time
	Message string
}

// NewManager wires the transport and remembered devices. preferred is
// the advertised name from config that scanning pairs against.
func NewManager(ctx context.Context, transport Transport, devices *repository.DeviceRepo, preferred string, log logging.Logger) *Manager {
	m := &Manager{
		store:     pubsub.NewStore(State{DeviceName: preferred}),
		transport: transport,
		devices:   devices,
		preferred: preferred,
	}
	if log == nil {
		log = logging.Nop{}
	}
	// Every structured record also lands in the diagnostic log buffer.
	m.log = logging.NewTee(log.With("component", "sensor"), m.AppendLog)

	if devices != nil {
		if rows, err := devices.List(ctx); err == nil {
			for _, d := range rows {
				m.known = append(m.known, d.Name)
			}
		}
	}
	return m
}

// State returns the current snapshot.
func (m *Manager) State() State { return m.store.Get() }

// Subscribe observes published snapshots. Dismissed screens cancel and
// are dropped; a stale subscriber never blocks the manager.
func (m *Manager) Subscribe(buffer int) (<-chan State, func()) {
	return m.store.Subscribe(buffer)
}

// ToggleScanning starts scanning when idle and stops it when active.
// It is a no-op while connected; disconnect first.
func (m *Manager) ToggleScanning(ctx context.Context) {
	st := m.store.Get()
	if st.Connected {
		return
	}
	m.mu.Lock()
	if m.stopScan != nil {
		stop := m.stopScan
		m.stopScan = nil
		m.mu.Unlock()
		stop()
		m.log.Info(ctx, "scan stopped")
		m.store.Update(func(s State) State {
			s.Scanning = false
			return s
		})
		return
	}
	scanCtx, cancel := context.WithCancel(context.Background())
	m.stopScan = cancel
	m.mu.Unlock()

	m.log.Info(ctx, "scan started", "looking_for", m.preferred)
	m.store.Update(func(s State) State {
		s.Scanning = true
		return s
	})
	go m.scanLoop(scanCtx)
}

// Disconnect closes the active link. Safe to call at any time.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	stop := m.stopStream
	m.stopStream = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Logs returns a copy of the diagnostic log, oldest first.
func (m *Manager) Logs() []LogEntry {
	m.logMu.Lock()
	defer m.logMu.Unlock()
	out := make([]LogEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

// ClearLogs empties the diagnostic log.
func (m *Manager) ClearLogs() {
	m.logMu.Lock()
	m.logs = nil
	m.logMu.Unlock()
}

// AppendLog adds a line to the diagnostic log, stamped with the current time.
func (m *Manager) AppendLog(line string) {
	m.logMu.Lock()
	m.logs = append(m.logs, LogEntry{At: time.Now(), Message: line})
	m.logMu.Unlock()
}

func (m *Manager) scanLoop(ctx context.Context) {
	advs, err := m.transport.Scan(ctx)
	if err != nil {
		m.log.Error(ctx, "scan failed", "err", err)
		m.finishScan()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case adv, ok := <-advs:
			if !ok {
				m.finishScan()
				m.log.Warn(ctx, "scan ended without a match")
				return
			}
			if !m.wants(adv) {
				continue
			}
			m.log.Info(ctx, "sensor found", "name", adv.Name, "rssi", adv.RSSI)
			if m.connect(ctx, adv) {
				m.finishScan()
				return
			}
		}
	}
}

// wants matches an advertisement against the preferred name and every
// remembered device, tolerating truncation and small renames.
func (m *Manager) wants(adv Advertisement) bool {
	if matchName(adv.Name, m.preferred) {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range m.known {
		if matchName(adv.Name, name) {
			return true
		}
	}
	return false
}

func (m *Manager) connect(ctx context.Context, adv Advertisement) bool {
	conn, err := m.transport.Connect(ctx, adv)
	if err != nil {
		m.log.Warn(ctx, "connect failed", "name", adv.Name, "err", err)
		return false
	}
	info, err := conn.Info(ctx)
	if err != nil {
		m.log.Warn(ctx, "device info read failed", "err", err)
		_ = conn.Close()
		return false
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.stopStream = cancel
	m.mu.Unlock()

	m.store.Set(State{
		Connected:  true,
		DeviceName: info.Name,
		Data: Data{
			Battery:  info.Battery,
			Firmware: info.Firmware,
			UUID:     info.UUID,
		},
	})
	m.log.Info(ctx, "connected", "name", info.Name, "firmware", info.Firmware, "battery", info.Battery)
	m.remember(ctx, info)

	go m.streamLoop(streamCtx, conn, info)
	return true
}

func (m *Manager) streamLoop(ctx context.Context, conn Conn, info DeviceInfo) {
	defer func() {
		_ = conn.Close()
		m.mu.Lock()
		m.stopStream = nil
		m.mu.Unlock()
		m.store.Update(func(s State) State {
			s.Connected = false
			s.Data.Samples = 0
			return s
		})
		m.log.Info(ctx, "disconnected", "name", info.Name)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-conn.Frames():
			if !ok {
				m.log.Warn(ctx, "link dropped", "name", info.Name)
				return
			}
			m.store.Update(func(s State) State {
				s.Data.Battery = frame.Battery
				s.Data.Samples += len(frame.PPG)
				return s
			})
		}
	}
}

func (m *Manager) finishScan() {
	m.mu.Lock()
	if m.stopScan != nil {
		m.stopScan()
		m.stopScan = nil
	}
	m.mu.Unlock()
	m.store.Update(func(s State) State {
		s.Scanning = false
		return s
	})
}

func (m *Manager) remember(ctx context.Context, info DeviceInfo) {
	m.mu.Lock()
	seen := false
	for _, n := range m.known {
		if n == info.Name {
			seen = true
			break
		}
	}
	if !seen {
		m.known = append(m.known, info.Name)
	}
	m.mu.Unlock()

	if m.devices == nil {
		return
	}
	fw := info.Firmware
	battery := info.Battery
	err := m.devices.Upsert(ctx, repository.Device{
		ID:         uuid.NewString(),
		DeviceUUID: info.UUID,
		Name:       info.Name,
		Firmware:   &fw,
		Battery:    &battery,
		LastSeen:   database.Now(),
	})
	if err != nil {
		m.log.Warn(ctx, "remember device", "err", err)
	}
}

// FormatUUID renders the 64-bit device uuid the way the firmware prints
// it, as 16 hex digits.
func FormatUUID(id uint64) string {
	return fmt.Sprintf("%016X", id)
}
