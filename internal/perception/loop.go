package perception

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/shared"
)

// Stats summarises one perception run.
type Stats struct {
	Frames     int
	Detections int
	Idle       int
}

// Run reads frames from src until the stop flag is raised, ctx is done or the
// source is exhausted. Each frame is converted against the motor pose inside
// a single Publish call; reading the frame happens outside the lock.
func Run(ctx context.Context, src Source, cam Camera, ch *shared.Channel, log *slog.Logger) (Stats, error) {
	var st Stats
	for {
		if ch.StopRequested() {
			return st, nil
		}

		frame, err := src.Next(ctx)
		switch {
		case errors.Is(err, ErrNoFrame):
			st.Idle++
			continue
		case errors.Is(err, io.EOF):
			log.Debug("perception source exhausted", "frames", st.Frames)
			return st, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return st, nil
		case err != nil:
			return st, err
		}

		st.Frames++
		blobs := frame.Blobs
		var n int
		stop := ch.Publish(func(motor pantilt.Pose) []pantilt.Detection {
			dets := cam.Convert(motor, blobs)
			n = len(dets)
			return dets
		})
		st.Detections += n
		if n > 0 {
			log.Debug("frame", "seq", frame.Seq, "detections", n)
		}
		if stop {
			return st, nil
		}
	}
}
