package status

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/doismellburning/fxradiod/internal/frontend"
)

// ListenMulticast opens a UDP socket bound to group's port with
// SO_REUSEPORT/SO_REUSEADDR set (so several front ends' command loops
// can share one multicast group on the same host) and joins group on
// iface, grounded in the pack's status listener
// (madpsy-ka9q_ubersdr/radiod_status.go), which does the same dance
// for the same wire protocol.
func ListenMulticast(group *net.UDPAddr, iface *net.Interface) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); sockErr != nil {
					return
				}
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", group.String())
	if err != nil {
		return nil, fmt.Errorf("status: listen multicast: %w", err)
	}
	conn := pc.(*net.UDPConn)

	// A nil iface lets the system pick the multicast interface.
	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(iface, group); err != nil {
		conn.Close()
		return nil, fmt.Errorf("status: join multicast group: %w", err)
	}

	return conn, nil
}

// Handlers are the device-specific actions a command loop dispatches
// recognized tags to. Frequency returns the actually-realized
// frequency (after calibration/rounding) to be reflected in the next
// status frame.
type Handlers struct {
	Calibrate func(value float64)
	RFGain    func(value float32)
	RFAtten   func(value float32)
	Frequency func(hz float64) (float64, error)
}

// CommandLoop is the blocking-receive command loop described in §4.7:
// it reads from a shared multicast group, ignores its own status
// responses (direction byte 0), TLV-walks and dispatches commands, and
// emits a fresh status frame after every command it processes.
type CommandLoop struct {
	fe       *frontend.Frontend
	conn     *net.UDPConn
	group    *net.UDPAddr
	handlers Handlers

	buildFrame func() Frame

	stop chan struct{}
}

// NewCommandLoop builds a command loop over conn, emitting frames
// built by buildFrame (typically a closure over the frontend and
// channel table) to group after each processed command.
func NewCommandLoop(fe *frontend.Frontend, conn *net.UDPConn, group *net.UDPAddr, handlers Handlers, buildFrame func() Frame) *CommandLoop {
	return &CommandLoop{
		fe:         fe,
		conn:       conn,
		group:      group,
		handlers:   handlers,
		buildFrame: buildFrame,
		stop:       make(chan struct{}),
	}
}

// Run blocks, processing command packets until Stop is called or the
// socket errors out.
func (l *CommandLoop) Run() error {
	buf := make([]byte, 16*1024)

	for {
		select {
		case <-l.stop:
			return nil
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("status: command loop read: %w", err)
		}

		if n == 0 || buf[0] == DirectionStatus {
			continue // skip our own (or anyone's) status responses
		}

		l.dispatch(buf[:n])
	}
}

func (l *CommandLoop) dispatch(packet []byte) {
	cmd, ok := DecodeCommand(packet)
	if !ok {
		return
	}

	if cmd.HasCalibrate && l.handlers.Calibrate != nil {
		l.handlers.Calibrate(cmd.Calibrate)
	}
	if cmd.HasRFGain && l.handlers.RFGain != nil {
		l.handlers.RFGain(cmd.RFGain)
	}
	if cmd.HasRFAtten && l.handlers.RFAtten != nil {
		l.handlers.RFAtten(cmd.RFAtten)
	}
	if cmd.HasFrequency && !l.fe.TuningLocked() && l.handlers.Frequency != nil {
		l.handlers.Frequency(cmd.FrequencyHz)
	}

	l.fe.IncCommandCount()
	l.emit()
}

func (l *CommandLoop) emit() {
	frame := l.buildFrame()
	packet := frame.Encode(make([]byte, 0, 512))
	l.conn.WriteToUDP(packet, l.group)
}

// Stop ends the command loop's Run call.
func (l *CommandLoop) Stop() { close(l.stop) }

// Monitor is the once-per-second liveness poll described in §4.7 and
// §5: on failure it closes the device and returns, expecting an
// external supervisor to restart the process.
type Monitor struct {
	alive  func() bool
	onDead func()
	stop   chan struct{}
}

// NewMonitor builds a Monitor that calls alive once per second and
// onDead the first time it reports false.
func NewMonitor(alive func() bool, onDead func()) *Monitor {
	return &Monitor{alive: alive, onDead: onDead, stop: make(chan struct{})}
}

// Run blocks until the device goes unresponsive or Stop is called.
func (m *Monitor) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if !m.alive() {
				m.onDead()
				return
			}
		}
	}
}

// Stop ends the monitor's Run call without invoking onDead.
func (m *Monitor) Stop() { close(m.stop) }
