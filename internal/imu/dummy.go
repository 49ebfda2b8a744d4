package imu

import "time"

// DummyReader reports a stationary, level orientation. Used on development
// hosts and in tests without hardware attached.
type DummyReader struct {
	start time.Time
}

// NewDummy returns a reader that always reports standard gravity and zero
// angular velocity.
func NewDummy() *DummyReader {
	return &DummyReader{start: time.Now()}
}

// Latest returns a fixed sample with a monotonically increasing timestamp.
func (d *DummyReader) Latest() Sample {
	return Sample{
		ProjectedGravity: stdGravity,
		Gyroscope:        [3]float64{0, 0, 0},
		Timestamp:        time.Since(d.start).Seconds(),
	}
}

// Close is a no-op; DummyReader owns no resources.
func (d *DummyReader) Close() error { return nil }
