// internal/writer/builder.go
package writer

import (
	"errors"

	"github.com/tamzrod/linkwatch/internal/config"
	wmodbus "github.com/tamzrod/linkwatch/internal/writer/modbus"
)

// BuildPlan converts the status_memory config into a StatusPlan.
// Assumes config has already passed validation.
func BuildPlan(m config.StatusMemoryConfig) (StatusPlan, error) {
	if !m.Enabled() {
		return StatusPlan{}, errors.New("writer: status_memory.endpoint required")
	}

	return StatusPlan{
		Endpoint:   m.Endpoint,
		UnitID:     m.UnitID,
		BaseSlot:   m.Slot,
		DeviceName: m.DeviceName,
	}, nil
}

// BuildStatusWriter creates the endpoint client and the writer bound to it.
// The returned close func releases the TCP connection.
func BuildStatusWriter(m config.StatusMemoryConfig) (StatusWriter, func() error, error) {
	plan, err := BuildPlan(m)
	if err != nil {
		return nil, nil, err
	}

	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  m.Timeout(),
	})
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewDeviceStatusWriter(plan, c)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	return sw, c.Close, nil
}
