package usb

import (
	"context"

	"github.com/ardnew/softusb/device"
	"github.com/ardnew/softusb/device/hal"
	"github.com/ardnew/softusb/pkg"
)

// fakeController records what the stack asks of the peripheral. SETUP
// packets and OUT data stages are queued by the test along with the event
// that announces them.
type fakeController struct {
	events Events
	setups []hal.SetupPacket
	outs   [][]byte

	ep0         [][]byte
	acks        int
	stalls      int
	statusReads int
	address     uint8
	endpoints   [][]hal.EndpointConfig
	halted      map[uint8]bool

	busy    bool
	packets [][]byte
}

func newFakeController() *fakeController {
	return &fakeController{halted: make(map[uint8]bool)}
}

func (c *fakeController) queueSetup(s device.SetupPacket) {
	c.setups = append(c.setups, hal.SetupPacket(s))
	c.events |= EventSetup
}

func (c *fakeController) queueOut(data []byte) {
	c.outs = append(c.outs, data)
	c.events |= EventControlOut
}

func (c *fakeController) Events() Events {
	ev := c.events
	c.events = 0
	return ev
}

func (c *fakeController) Init(ctx context.Context) error { return nil }
func (c *fakeController) Start() error                   { return nil }
func (c *fakeController) Stop() error                    { return nil }

func (c *fakeController) SetAddress(address uint8) error {
	c.address = address
	return nil
}

func (c *fakeController) ConfigureEndpoints(endpoints []hal.EndpointConfig) error {
	c.endpoints = append(c.endpoints, append([]hal.EndpointConfig(nil), endpoints...))
	return nil
}

func (c *fakeController) ReadSetup(ctx context.Context, out *hal.SetupPacket) error {
	if len(c.setups) == 0 {
		return pkg.ErrInvalidState
	}
	*out = c.setups[0]
	c.setups = c.setups[1:]
	return nil
}

func (c *fakeController) WriteEP0(ctx context.Context, data []byte) error {
	c.ep0 = append(c.ep0, append([]byte(nil), data...))
	return nil
}

func (c *fakeController) ReadEP0(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		c.statusReads++
		return 0, nil
	}
	if len(c.outs) == 0 {
		return 0, pkg.ErrInvalidState
	}
	n := copy(buf, c.outs[0])
	c.outs = c.outs[1:]
	return n, nil
}

func (c *fakeController) StallEP0() error {
	c.stalls++
	return nil
}

func (c *fakeController) AckEP0() error {
	c.acks++
	return nil
}

func (c *fakeController) Read(ctx context.Context, address uint8, buf []byte) (int, error) {
	return 0, pkg.ErrNotSupported
}

func (c *fakeController) Write(ctx context.Context, address uint8, data []byte) (int, error) {
	if c.busy {
		return 0, nil
	}
	c.busy = true
	c.packets = append(c.packets, append([]byte{address}, data...))
	return len(data), nil
}

func (c *fakeController) Stall(address uint8) error {
	c.halted[address] = true
	return nil
}

func (c *fakeController) ClearStall(address uint8) error {
	delete(c.halted, address)
	return nil
}

func (c *fakeController) IsConnected() bool                        { return true }
func (c *fakeController) GetSpeed() hal.Speed                      { return hal.SpeedFull }
func (c *fakeController) WaitConnect(ctx context.Context) error    { return nil }
func (c *fakeController) WaitDisconnect(ctx context.Context) error { return nil }

// fakeClass answers class requests and descriptor requests to its interface
type fakeClass struct {
	polls  int
	setups []device.SetupPacket
	data   [][]byte
	resp   []byte
}

func (c *fakeClass) Poll() { c.polls++ }

func (c *fakeClass) HandleSetup(setup *device.SetupPacket, data []byte) ([]byte, bool) {
	if setup.IsStandard() && setup.Request != device.RequestGetDescriptor {
		return nil, false
	}
	c.setups = append(c.setups, *setup)
	c.data = append(c.data, append([]byte(nil), data...))
	return c.resp, true
}
