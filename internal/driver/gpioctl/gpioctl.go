// Package gpioctl drives the hf-att/hf-lna configuration keys (§6) as
// GPIO lines on an attached relay/attenuator board, via
// github.com/warthog618/go-gpiocdev.
package gpioctl

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Board owns the two GPIO output lines a front end's HF front-end
// relays (attenuator, preamp/LNA bypass) are wired to.
type Board struct {
	att *gpiocdev.Line
	lna *gpiocdev.Line
}

// Open requests the attenuator and LNA-bypass lines as outputs on
// chip (e.g. "gpiochip0") at the given offsets, both initially
// de-energized.
func Open(chip string, attOffset, lnaOffset int) (*Board, error) {
	att, err := gpiocdev.RequestLine(chip, attOffset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("gpioctl: request att line: %w", err)
	}

	lna, err := gpiocdev.RequestLine(chip, lnaOffset, gpiocdev.AsOutput(0))
	if err != nil {
		att.Close()
		return nil, fmt.Errorf("gpioctl: request lna line: %w", err)
	}

	return &Board{att: att, lna: lna}, nil
}

// SetAtten energizes or releases the attenuator relay, matching the
// "hf-att" config key (§6).
func (b *Board) SetAtten(on bool) error {
	if err := b.att.SetValue(boolToValue(on)); err != nil {
		return fmt.Errorf("gpioctl: set att: %w", err)
	}
	return nil
}

// SetLNA energizes or releases the LNA-bypass relay, matching the
// "hf-lna" config key (§6).
func (b *Board) SetLNA(on bool) error {
	if err := b.lna.SetValue(boolToValue(on)); err != nil {
		return fmt.Errorf("gpioctl: set lna: %w", err)
	}
	return nil
}

func boolToValue(on bool) int {
	if on {
		return 1
	}
	return 0
}

// Close releases both GPIO lines.
func (b *Board) Close() error {
	errAtt := b.att.Close()
	errLna := b.lna.Close()
	if errAtt != nil {
		return fmt.Errorf("gpioctl: close att line: %w", errAtt)
	}
	if errLna != nil {
		return fmt.Errorf("gpioctl: close lna line: %w", errLna)
	}
	return nil
}
