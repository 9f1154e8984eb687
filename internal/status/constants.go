// internal/status/constants.go
package status

// Link Status Block layout constants.
// These values define the exported register layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per supervisor.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the link health (see Health* below).
const SlotHealthCode = 0

// SlotRecoveryCycles holds the consecutive recovery cycles of the current outage.
const SlotRecoveryCycles = 1

// SlotSecondsOffline holds how long (in seconds) the link has been unhealthy.
const SlotSecondsOffline = 2

// SlotEscalations holds the number of dependent-service restarts since start.
const SlotEscalations = 3

// ---- RESERVED RANGE ----

// Slots 4-10 are reserved for future use.
const SlotReservedStart = 4
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// CounterMax is where every counter slot saturates.
const CounterMax = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first probe.
const HealthUnknown uint16 = 0

// HealthOnline represents monitoring with the last probe UP.
const HealthOnline uint16 = 1

// HealthOffline represents monitoring with the last probe DOWN (e.g. right after escalation).
const HealthOffline uint16 = 2

// HealthRecovering represents an active recovery sequence.
const HealthRecovering uint16 = 3

// HealthEscalating represents the escalation step.
const HealthEscalating uint16 = 4
