package config

// Overrides carries command line values. Nil fields leave the file value
// untouched.
type Overrides struct {
	DeviceID          *string
	Host              *string
	Port              *int
	DefaultDriveSpeed *float64
	MaxDriveSpeed     *float64
	MaxSteer          *float64
	Transport         *string
	LogLevel          *string
}

// ApplyOverrides copies every set override into c
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DeviceID != nil {
		c.Device.ID = *o.DeviceID
	}
	if o.Host != nil {
		c.Transport.Host = *o.Host
	}
	if o.Port != nil {
		c.Transport.Port = *o.Port
	}
	if o.DefaultDriveSpeed != nil {
		c.Drive.DefaultDriveSpeed = *o.DefaultDriveSpeed
	}
	if o.MaxDriveSpeed != nil {
		c.Drive.MaxDriveSpeed = *o.MaxDriveSpeed
	}
	if o.MaxSteer != nil {
		c.Drive.MaxSteer = *o.MaxSteer
	}
	if o.Transport != nil {
		c.Transport.Kind = *o.Transport
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
}
