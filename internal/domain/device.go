package domain

// DeviceType identifies which home health-monitoring device produced an
// export file. The set is closed: adding a device means adding a parser.
type DeviceType string

const (
	DeviceThermometer          DeviceType = "thermometer"            // Beurer HealthManagerPro export
	DeviceBloodPressureMonitor DeviceType = "blood_pressure_monitor" // Omron measurement data export
	DevicePulseOximeter        DeviceType = "pulse_oximeter"         // Healthtree spreadsheet export
	DeviceUnknown              DeviceType = "unknown"
)

// String returns the wire/storage form of the device type.
func (d DeviceType) String() string { return string(d) }
