package imu

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"go.bug.st/serial"
)

// SerialReader samples a Hiwonder-protocol IMU over a serial port in a
// background goroutine, publishing the latest gyro/quaternion sample into a
// mutex-guarded record. It replaces the reference firmware's separate
// sampling process and mmap record with a goroutine and an in-process lock
// (see the package doc's note on the background-IMU redesign flag).
type SerialReader struct {
	port serial.Port

	mu         sync.Mutex
	gyro       [3]float64
	quaternion quaternion
	timestamp  float64

	stop chan struct{}
	done chan struct{}
}

// OpenSerial opens device at baudRate and starts the background sampling
// goroutine.
func OpenSerial(device string, baudRate int) (*SerialReader, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	r := &SerialReader{
		port: port,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.run()
	return r, nil
}

const (
	packetSyncByte       = 0x55
	packetLen            = 11
	packetTypeGyro       = 0x52
	packetTypeQuaternion = 0x59
)

func (r *SerialReader) run() {
	defer close(r.done)
	buf := make([]byte, 1)
	packet := make([]byte, packetLen)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := r.port.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if buf[0] != packetSyncByte {
			continue
		}
		packet[0] = packetSyncByte
		if !readFull(r.port, packet[1:]) {
			continue
		}
		if checksum(packet) != packet[packetLen-1] {
			continue
		}
		r.applyPacket(packet, float64(time.Now().UnixNano())/1e9)
	}
}

func readFull(port serial.Port, dst []byte) bool {
	total := 0
	for total < len(dst) {
		n, err := port.Read(dst[total:])
		if err != nil {
			return false
		}
		total += n
	}
	return true
}

func checksum(packet []byte) byte {
	var sum byte
	for _, b := range packet[:packetLen-1] {
		sum += b
	}
	return sum
}

func (r *SerialReader) applyPacket(packet []byte, ts float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch packet[1] {
	case packetTypeGyro:
		r.gyro = parseGyro(packet)
	case packetTypeQuaternion:
		r.quaternion = parseQuaternion(packet)
	default:
		return
	}
	r.timestamp = ts
}

func parseGyro(packet []byte) [3]float64 {
	scale := 2000.0 * math.Pi / 180.0 / 32768.0
	gx := float64(int16(binary.LittleEndian.Uint16(packet[2:4]))) * scale
	gy := float64(int16(binary.LittleEndian.Uint16(packet[4:6]))) * scale
	gz := float64(int16(binary.LittleEndian.Uint16(packet[6:8]))) * scale
	return [3]float64{gx, gy, gz}
}

func parseQuaternion(packet []byte) quaternion {
	const scale = 1.0 / 32768.0
	qw := float64(int16(binary.LittleEndian.Uint16(packet[2:4]))) * scale
	qx := float64(int16(binary.LittleEndian.Uint16(packet[4:6]))) * scale
	qy := float64(int16(binary.LittleEndian.Uint16(packet[6:8]))) * scale
	qz := float64(int16(binary.LittleEndian.Uint16(packet[8:10]))) * scale
	return quaternion{qw, qx, qy, qz}
}

// Latest returns the most recently published sample.
func (r *SerialReader) Latest() Sample {
	r.mu.Lock()
	gyro := r.gyro
	q := r.quaternion
	ts := r.timestamp
	r.mu.Unlock()

	return Sample{
		ProjectedGravity: projectGravity(normalizeOrIdentity(q)),
		Gyroscope:        gyro,
		Timestamp:        ts,
	}
}

// Close stops the sampling goroutine and closes the serial port.
func (r *SerialReader) Close() error {
	close(r.stop)
	<-r.done
	return r.port.Close()
}
