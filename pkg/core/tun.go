package core

import "sync/atomic"

// Direction tells which way a frame travelled through a pipeline.
type Direction int

const (
	// Inbound frames were read from the device and handed to the caller.
	Inbound Direction = iota
	// Outbound frames were sent by the caller and written to the device.
	Outbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "in"
	}
	return "out"
}

// PipelineMetrics is a snapshot of the counters of one pipeline.
type PipelineMetrics struct {
	// FramesRead is the number of frames read from the device
	FramesRead uint64 `json:"frames_read"`

	// FramesWritten is the number of frames written to the device
	FramesWritten uint64 `json:"frames_written"`

	// BytesRead is the number of bytes read from the device
	BytesRead uint64 `json:"bytes_read"`

	// BytesWritten is the number of bytes written to the device
	BytesWritten uint64 `json:"bytes_written"`

	// ReadRetries counts reads that returned no data (timeout or would-block)
	ReadRetries uint64 `json:"read_retries"`

	// WriteErrors is the number of frames the device refused
	WriteErrors uint64 `json:"write_errors"`

	// Reservations counts read buffer renewals
	Reservations uint64 `json:"reservations"`
}

// Counters is the live, concurrently updated form of PipelineMetrics.
type Counters struct {
	FramesRead    atomic.Uint64
	FramesWritten atomic.Uint64
	BytesRead     atomic.Uint64
	BytesWritten  atomic.Uint64
	ReadRetries   atomic.Uint64
	WriteErrors   atomic.Uint64
	Reservations  atomic.Uint64
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() PipelineMetrics {
	return PipelineMetrics{
		FramesRead:    c.FramesRead.Load(),
		FramesWritten: c.FramesWritten.Load(),
		BytesRead:     c.BytesRead.Load(),
		BytesWritten:  c.BytesWritten.Load(),
		ReadRetries:   c.ReadRetries.Load(),
		WriteErrors:   c.WriteErrors.Load(),
		Reservations:  c.Reservations.Load(),
	}
}

// Add sums two snapshots, used when reporting all queues of an interface.
func (m PipelineMetrics) Add(o PipelineMetrics) PipelineMetrics {
	return PipelineMetrics{
		FramesRead:    m.FramesRead + o.FramesRead,
		FramesWritten: m.FramesWritten + o.FramesWritten,
		BytesRead:     m.BytesRead + o.BytesRead,
		BytesWritten:  m.BytesWritten + o.BytesWritten,
		ReadRetries:   m.ReadRetries + o.ReadRetries,
		WriteErrors:   m.WriteErrors + o.WriteErrors,
		Reservations:  m.Reservations + o.Reservations,
	}
}
