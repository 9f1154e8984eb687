// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/linkwatch/internal/status"
)

// StatusWriter is the delivery-only contract for the link status block.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot, now time.Time) error
}

// deviceStatusWriter remembers what it last delivered so unchanged slots are not rewritten.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

const statusAreaHoldingRegisters byte = 3

// liveSlots are compared and written one by one after the first full assert.
var liveSlots = []struct {
	slot int
	name string
}{
	{status.SlotHealthCode, "health"},
	{status.SlotRecoveryCycles, "cycles"},
	{status.SlotSecondsOffline, "seconds_offline"},
	{status.SlotEscalations, "escalations"},
}

// NewDeviceStatusWriter binds a plan to its endpoint client.
func NewDeviceStatusWriter(plan StatusPlan, cli endpointClient) (*deviceStatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.BaseSlot)*status.SlotsPerDevice+status.SlotsPerDevice > 1<<16 {
		return nil, fmt.Errorf("status writer: slot %d out of address range", plan.BaseSlot)
	}

	return &deviceStatusWriter{
		plan:     &plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: status.EncodeDeviceName(plan.DeviceName),
	}, nil
}

// WriteStatus delivers a status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot, now time.Time) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}

	regs := status.Encode(s, now)
	baseAddr := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

		if err := sw.cli.WriteRegisters(unitID, baseAddr, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs
		return nil
	}

	var errs []string

	for _, ls := range liveSlots {
		v := regs[ls.slot]
		if sw.last[ls.slot] == v {
			continue
		}
		if err := sw.cli.WriteRegisters(unitID, baseAddr+uint16(ls.slot), []uint16{v}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", ls.slot, ls.name, err))
			continue
		}
		sw.last[ls.slot] = v
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	return sw.plan.BaseSlot * status.SlotsPerDevice
}
