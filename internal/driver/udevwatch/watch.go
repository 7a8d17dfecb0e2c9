// Package udevwatch provides optional USB front-end hot-plug discovery
// via github.com/jochenvg/go-udev: it locates a device's /dev node by
// serial number and reports newly attached USB devices. cmd/fxradiod
// does not call it.
package udevwatch

import (
	"context"
	"fmt"

	"github.com/jochenvg/go-udev"
)

// FindBySerial scans currently attached USB devices for one whose
// ID_SERIAL_SHORT property matches serial, returning its devnode
// (e.g. "/dev/bus/usb/001/004"). It returns an empty string if no
// match is found.
func FindBySerial(serial string) (string, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()

	if err := e.AddMatchSubsystem("usb"); err != nil {
		return "", fmt.Errorf("udevwatch: match subsystem: %w", err)
	}

	devices, err := e.Devices()
	if err != nil {
		return "", fmt.Errorf("udevwatch: enumerate devices: %w", err)
	}

	for _, d := range devices {
		if d.PropertyValue("ID_SERIAL_SHORT") == serial {
			return d.Devnode(), nil
		}
	}

	return "", nil
}

// WatchArrivals streams devnodes of newly attached USB devices on the
// returned channel until ctx is canceled, so a caller can notice a
// device plugged in after startup.
func WatchArrivals(ctx context.Context) (<-chan string, error) {
	u := udev.Udev{}
	m := u.NewMonitorFromNetlink("udev")

	if err := m.FilterAddMatchSubsystem("usb"); err != nil {
		return nil, fmt.Errorf("udevwatch: filter subsystem: %w", err)
	}

	deviceCh, _, err := m.DeviceChan(ctx)
	if err != nil {
		return nil, fmt.Errorf("udevwatch: start monitor: %w", err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for d := range deviceCh {
			if d.Action() != "add" {
				continue
			}
			select {
			case out <- d.Devnode():
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
