package session

import "context"

// Capture is a live audio capture handle. Stop releases the device; the
// recorded bytes travel separately through EndVoiceCapture.
type Capture interface {
	Stop()
}

// CaptureDevice grants capture handles. Implementations that cannot grant
// access return an error, which the controller maps to ErrDeviceUnavailable.
type CaptureDevice interface {
	Begin(ctx context.Context) (Capture, error)
}

// RemoteCaptureDevice always grants a no-op handle. The server build uses it
// because recording happens on the client; begin/end only drive the state
// machine here.
type RemoteCaptureDevice struct{}

type nopCapture struct{}

func (nopCapture) Stop() {}

func (RemoteCaptureDevice) Begin(ctx context.Context) (Capture, error) {
	return nopCapture{}, nil
}
