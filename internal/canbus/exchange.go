package canbus

import "github.com/kscalelabs/kmotor/internal/canframe"

// FeedbackResult is one actuator's outcome for a feedback exchange: either a
// freshly read Feedback, or a miss (Absent) that the caller should cover
// with its own last-known-good cache.
type FeedbackResult struct {
	ActuatorID uint8
	Feedback   canframe.Feedback
	Absent     bool
}

// ExchangeFeedback requests feedback from every discovered actuator on this
// bus, in discovery order, and returns one FeedbackResult per actuator. Each
// miss increments the bus's miss counter (see Misses). A critical fault on
// any actuator aborts the exchange immediately and is returned as an error,
// per spec.md §4.D failure semantics.
func (b *Interface) ExchangeFeedback(warn func(string)) ([]FeedbackResult, error) {
	out := make([]FeedbackResult, 0, len(b.Actuators))
	for _, id := range b.Actuators {
		r, err := b.requestOne(id, warn)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *Interface) requestOne(actuatorID uint8, warn func(string)) (FeedbackResult, error) {
	if err := b.send(canframe.BuildFeedbackRequest(actuatorID)); err != nil {
		b.misses++
		return FeedbackResult{ActuatorID: actuatorID, Absent: true}, nil
	}
	r, fErr := b.receiveExpect(canframe.MuxFeedback, warn)
	if fErr != nil {
		return FeedbackResult{}, fErr
	}
	if r.Absent {
		b.misses++
		return FeedbackResult{ActuatorID: actuatorID, Absent: true}, nil
	}
	return FeedbackResult{ActuatorID: actuatorID, Feedback: canframe.ParseFeedback(r.Frame)}, nil
}

// Misses returns the cumulative count of timed-out feedback requests on this
// bus since it was opened.
func (b *Interface) Misses() int { return b.misses }
