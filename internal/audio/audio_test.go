package audio

import (
	"context"
	"io"
	"reflect"
	"testing"

	pulseproto "github.com/jfreymuth/pulse/proto"
	"github.com/stretchr/testify/require"
)

func deviceFixtures() []Device {
	return []Device{
		{ID: "alsa_input.usb-blue_yeti", Description: "Blue Yeti Mono", Available: true, Default: true},
		{ID: "alsa_input.usb-c920", Description: "Logitech C920 Mic", Available: true},
	}
}

func TestResolveSelectionPrefersDefaultForEmptyTerm(t *testing.T) {
	selection, err := resolveSelection(deviceFixtures(), "", "default")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-blue_yeti", selection.Device.ID)
	require.Empty(t, selection.Warning)
	require.False(t, selection.Fallback)
}

func TestResolveSelectionFallsBackWhenPrimaryMuted(t *testing.T) {
	devices := deviceFixtures()
	devices[0].Muted = true

	selection, err := resolveSelection(devices, "yeti", "c920")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-c920", selection.Device.ID)
	require.True(t, selection.Fallback)
	require.Contains(t, selection.Warning, "muted")
	require.Contains(t, selection.Warning, "falling back")
}

func TestResolveSelectionFailsWhenFallbackAlsoUnusable(t *testing.T) {
	devices := []Device{
		{ID: "yeti", Description: "Blue Yeti Mono", Available: true, Muted: true, Default: true},
	}

	_, err := resolveSelection(devices, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "muted")
}

func TestResolveSelectionUnknownPrimaryTerm(t *testing.T) {
	_, err := resolveSelection(deviceFixtures(), "rode", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")
}

func TestResolveSelectionEmptyDeviceList(t *testing.T) {
	_, err := resolveSelection(nil, "default", "default")
	require.Error(t, err)
}

func TestMatchesAgainstIDAndDescription(t *testing.T) {
	dev := Device{ID: "alsa_input.usb-blue_yeti", Description: "Blue Yeti Mono"}
	require.True(t, matches(dev, "yeti"))
	require.True(t, matches(dev, "blue yeti mono"))
	require.False(t, matches(dev, "c920"))
	require.False(t, matches(dev, ""))
}

func TestUnusableReason(t *testing.T) {
	require.Equal(t, "", unusableReason(Device{Available: true}))
	require.Equal(t, "muted", unusableReason(Device{Available: true, Muted: true}))
	require.Equal(t, "unavailable", unusableReason(Device{}))
}

func TestListDevicesFailsWithoutPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := ListDevices(context.Background())
	require.Error(t, err)
}

func TestSelectDeviceFailsWithoutPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := SelectDevice(context.Background(), "default", "default")
	require.Error(t, err)
}

func TestStateLabel(t *testing.T) {
	require.Equal(t, "running", stateLabel(0))
	require.Equal(t, "idle", stateLabel(1))
	require.Equal(t, "suspended", stateLabel(2))
	require.Equal(t, "unknown(9)", stateLabel(9))
}

func TestPortAvailable(t *testing.T) {
	require.False(t, portAvailable(nil))

	// Port-less sources count as available.
	require.True(t, portAvailable(&pulseproto.GetSourceInfoReply{}))

	yes := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setPorts(t, yes, []portFixture{{name: "mic", available: 2}})
	require.True(t, portAvailable(yes))

	no := &pulseproto.GetSourceInfoReply{ActivePortName: "mic"}
	setPorts(t, no, []portFixture{{name: "mic", available: 1}})
	require.False(t, portAvailable(no))
}

func TestIngestSlicesFramesAndStopFlushesResidual(t *testing.T) {
	c := &Capture{
		frames: make(chan []byte, 8),
		halted: make(chan struct{}),
	}

	input := make([]byte, frameBytes+57)
	for i := range input {
		input[i] = byte(i % 251)
	}

	n, err := c.ingest(input)
	require.NoError(t, err)
	require.Equal(t, len(input), n)
	require.Equal(t, int64(len(input)), c.BytesCaptured())
	require.Len(t, c.RawPCM(), len(input))

	first := <-c.Chunks()
	require.Len(t, first, frameBytes)
	require.Equal(t, input[:frameBytes], first)

	require.NoError(t, c.Stop())

	tail, ok := <-c.Chunks()
	require.True(t, ok)
	require.Len(t, tail, 57)

	_, ok = <-c.Chunks()
	require.False(t, ok)
}

func TestIngestRefusesAfterStop(t *testing.T) {
	c := &Capture{
		frames: make(chan []byte, 1),
		halted: make(chan struct{}),
	}
	require.NoError(t, c.Stop())

	n, err := c.ingest([]byte{1, 2, 3})
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, int64(0), c.BytesCaptured())
}

func TestStopIsIdempotent(t *testing.T) {
	c := &Capture{
		device: Device{ID: "mic-1"},
		frames: make(chan []byte, 1),
		halted: make(chan struct{}),
	}
	require.Equal(t, "mic-1", c.Device().ID)

	c.Close()
	require.NoError(t, c.Stop())

	_, ok := <-c.Chunks()
	require.False(t, ok)
}

type portFixture struct {
	name      string
	available uint32
}

func setPorts(t *testing.T, reply *pulseproto.GetSourceInfoReply, ports []portFixture) {
	t.Helper()

	sliceType := reflect.TypeOf(reply.Ports)
	value := reflect.MakeSlice(sliceType, len(ports), len(ports))
	for i, port := range ports {
		item := value.Index(i)
		item.FieldByName("Name").SetString(port.name)
		item.FieldByName("Available").SetUint(uint64(port.available))
	}
	reflect.ValueOf(reply).Elem().FieldByName("Ports").Set(value)
}
