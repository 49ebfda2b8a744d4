package imu

import (
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Register layout for a generic 6-axis accelerometer/gyroscope IMU reachable
// over I2C (MPU9250-family register addresses, high byte first).
const (
	regAccelXOutH = 0x3B
	regGyroXOutH  = 0x43
	sensorReadLen = 14 // accel x/y/z, temp, gyro x/y/z: 7 * 2 bytes
)

// accelFullScaleG and gyroFullScaleDPS match the sensor's default power-on
// configuration (±2g, ±250 deg/s).
const (
	accelFullScaleG    = 2.0
	gyroFullScaleDPS   = 250.0
	int16FullScaleSpan = 32768.0
)

// I2CReader samples a 6-axis I2C IMU synchronously on a background
// goroutine. Without an onboard sensor fusion quaternion, projected gravity
// is approximated from the normalized, sign-flipped accelerometer reading -
// a good approximation at rest or under low dynamic acceleration, and the
// best available without a fused orientation estimate.
type I2CReader struct {
	dev *i2c.Dev
	bus i2c.BusCloser

	mu   sync.Mutex
	last Sample

	stop chan struct{}
	done chan struct{}
}

// OpenI2C initializes the host drivers, opens busName (or the system
// default if empty) and the device at addr, and starts a background
// sampling goroutine polling at pollInterval.
func OpenI2C(busName string, addr uint16, pollInterval time.Duration) (*I2CReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, err
	}

	r := &I2CReader{
		dev:  &i2c.Dev{Addr: addr, Bus: bus},
		bus:  bus,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.run(pollInterval)
	return r, nil
}

func (r *I2CReader) run(pollInterval time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.poll()
		}
	}
}

func (r *I2CReader) poll() {
	var buf [sensorReadLen]byte
	if err := r.dev.Tx([]byte{regAccelXOutH}, buf[:]); err != nil {
		return
	}

	accel := decodeAxes(buf[0:6], accelFullScaleG)
	gyro := decodeAxes(buf[8:14], gyroFullScaleDPS*3.14159265358979323846/180.0)

	s := Sample{
		ProjectedGravity: approximateGravityFromAccel(accel),
		Gyroscope:        gyro,
		Timestamp:        float64(time.Now().UnixNano()) / 1e9,
	}
	r.mu.Lock()
	r.last = s
	r.mu.Unlock()
}

func decodeAxes(raw []byte, fullScale float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		v := int16(uint16(raw[i*2])<<8 | uint16(raw[i*2+1]))
		out[i] = float64(v) / int16FullScaleSpan * fullScale
	}
	return out
}

// approximateGravityFromAccel normalizes the raw accelerometer reading
// (units of g), flips its sign and scales it to 9.81; at rest the
// accelerometer measures the reaction to gravity, so the flipped vector IS
// gravity in the body frame, matching what a fused-orientation reader would
// report for a stationary or slowly-moving robot.
func approximateGravityFromAccel(accel [3]float64) [3]float64 {
	mag := accel[0]*accel[0] + accel[1]*accel[1] + accel[2]*accel[2]
	if mag < 1e-9 {
		return stdGravity
	}
	norm := -9.81 / math.Sqrt(mag)
	return [3]float64{accel[0] * norm, accel[1] * norm, accel[2] * norm}
}

// Latest returns the most recently polled sample.
func (r *I2CReader) Latest() Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Close stops the polling goroutine and releases the I2C bus handle.
func (r *I2CReader) Close() error {
	close(r.stop)
	<-r.done
	return r.bus.Close()
}
