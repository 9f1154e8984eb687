// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/linkwatch/internal/status"
)

// ---- fakes ----

type fakeEndpointClient struct {
	mu sync.Mutex

	calls        int
	lastUnit     uint8
	lastRegsAddr uint16
	lastRegs     []uint16
	failNext     int
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failNext > 0 {
		f.failNext--
		return errors.New("connection refused")
	}
	f.lastUnit = unitID
	f.lastRegsAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

func (f *fakeEndpointClient) snapshot() (calls int, addr uint16, regs []uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.lastRegsAddr, append([]uint16(nil), f.lastRegs...)
}

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func newTestWriter(t *testing.T, cli *fakeEndpointClient, slot uint16) *deviceStatusWriter {
	t.Helper()
	sw, err := NewDeviceStatusWriter(StatusPlan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   slot,
		DeviceName: "PI-GATEWAY",
	}, cli)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	return sw
}

// ---- tests ----

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestWriter(t, cli, 0)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOnline}, now); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}

	expectedNameRegs := status.EncodeDeviceName("PI-GATEWAY")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthRecovering, Cycles: 1}, now); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	if len(cli.lastRegs) == status.SlotsPerDevice {
		t.Fatalf("device name should not be rewritten on incremental update")
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestWriter(t, cli, 0)

	s := status.Snapshot{Health: status.HealthOnline}
	_ = sw.WriteStatus(s, now)
	_ = sw.WriteStatus(s, now.Add(time.Second))

	if calls, _, _ := cli.snapshot(); calls != 1 {
		t.Fatalf("expected only the initial full write, got %d calls", calls)
	}
}

func TestSecondsOfflineResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestWriter(t, cli, 2)

	offline := status.Snapshot{Health: status.HealthRecovering, OfflineSince: now.Add(-3 * time.Second)}
	if err := sw.WriteStatus(offline, now); err != nil {
		t.Fatalf("offline snapshot write failed: %v", err)
	}

	// recovery: health changes first, then seconds_offline
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOnline}, now); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	_, addr, regs := cli.snapshot()
	expectedAddr := uint16(2*status.SlotsPerDevice + status.SlotSecondsOffline)
	if addr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", addr, expectedAddr)
	}
	if len(regs) != 1 || regs[0] != 0 {
		t.Fatalf("seconds_offline not reset: %v", regs)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestWriter(t, cli, 0)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOnline}, now)

	cli.failNext = 1
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthRecovering}, now); err == nil {
		t.Fatalf("expected incremental write error")
	}

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthRecovering}, now); err != nil {
		t.Fatalf("re-assert failed: %v", err)
	}
	if _, _, regs := cli.snapshot(); len(regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure, got %d regs", len(regs))
	}
}

func TestFirstWriteFailureRetriesFullBlock(t *testing.T) {
	cli := &fakeEndpointClient{failNext: 1}
	sw := newTestWriter(t, cli, 0)

	if err := sw.WriteStatus(status.Snapshot{}, now); err == nil {
		t.Fatalf("expected error")
	}
	if err := sw.WriteStatus(status.Snapshot{}, now); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if _, _, regs := cli.snapshot(); len(regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block, got %d regs", len(regs))
	}
}

func TestNewDeviceStatusWriterRejectsBadPlan(t *testing.T) {
	if _, err := NewDeviceStatusWriter(StatusPlan{Endpoint: "x"}, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewDeviceStatusWriter(StatusPlan{BaseSlot: 4000}, &fakeEndpointClient{}); err == nil {
		t.Fatalf("expected error for slot beyond address range")
	}
}
