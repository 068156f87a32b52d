// Package audio discovers PulseAudio input sources and captures PCM for
// dictation.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the capture source the policy settled on. Warning is non-empty
// when the configured primary was skipped, and Fallback marks that the chosen
// device differs from it.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

func connect() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("benedict"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListDevices enumerates Pulse input sources with state, availability, mute,
// and default-source metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var reply pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	var devices []Device
	for _, info := range reply {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			State:       stateLabel(info.State),
			Available:   portAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultSource.ID(),
		})
	}
	return devices, nil
}

// SelectDevice resolves the configured primary and fallback terms against the
// live source list.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return resolveSelection(devices, input, fallback)
}

// resolveSelection picks the primary device when it is usable, otherwise the
// fallback when that one is. "default" and empty terms mean the Pulse default
// source.
func resolveSelection(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	primary, err := resolveTerm(devices, input, "audio.input")
	if err != nil {
		return Selection{}, err
	}

	if reason := unusableReason(*primary); reason != "" {
		secondary, ferr := resolveTerm(devices, fallback, "audio.fallback")
		if ferr != nil {
			return Selection{}, fmt.Errorf("primary input %q is %s and no usable fallback: %w", primary.ID, reason, ferr)
		}
		if fbReason := unusableReason(*secondary); fbReason != "" {
			return Selection{}, fmt.Errorf("audio fallback device %q is %s", secondary.ID, fbReason)
		}
		return Selection{
			Device:   *secondary,
			Warning:  fmt.Sprintf("audio.input %q is %s; falling back to %q", primary.ID, reason, secondary.ID),
			Fallback: primary.ID != secondary.ID,
		}, nil
	}

	return Selection{Device: *primary}, nil
}

// resolveTerm maps one configured term to a device. key names the config
// field for error messages.
func resolveTerm(devices []Device, term string, key string) (*Device, error) {
	term = strings.TrimSpace(strings.ToLower(term))

	if term == "" || term == "default" {
		for i := range devices {
			if devices[i].Default {
				return &devices[i], nil
			}
		}
		return nil, errors.New("default audio source is unavailable")
	}

	for i := range devices {
		if matches(devices[i], term) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("%s %q did not match any device", key, term)
}

// unusableReason returns why a device cannot record, or "" when it can.
func unusableReason(device Device) string {
	switch {
	case device.Muted:
		return "muted"
	case !device.Available:
		return "unavailable"
	default:
		return ""
	}
}

func matches(device Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(device.ID), term) ||
		strings.Contains(strings.ToLower(device.Description), term)
}

func stateLabel(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// portAvailable inspects the active port of a source. Sources without ports
// are treated as available.
func portAvailable(info *pulseproto.GetSourceInfoReply) bool {
	if info == nil {
		return false
	}
	for _, port := range info.Ports {
		if port.Name != info.ActivePortName {
			continue
		}
		// Availability per Pulse: 0 unknown, 1 no, 2 yes.
		return port.Available != 1
	}
	return true
}
