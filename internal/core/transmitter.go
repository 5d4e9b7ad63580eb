package core

import "context"

// Transmitter delivers an assembled payload to the remote endpoint.
//
// Send returns nil when the payload was handed off. Whether the endpoint
// accepted it is backend-specific: the HTTP sink treats the response as
// opaque unless configured otherwise.
type Transmitter interface {
	Send(ctx context.Context, p Payload) error
}

// TransmitterFunc adapts a function to Transmitter.
type TransmitterFunc func(ctx context.Context, p Payload) error

// Send implements Transmitter.
func (f TransmitterFunc) Send(ctx context.Context, p Payload) error {
	return f(ctx, p)
}

// Observer receives submission outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveSubmission(SubmissionResult)
	ObserveRejection(code string)
}
