package emit

import "context"

// NullEmitter discards every event. Use it to disable observability without
// threading a nil check through the Dispatcher.
type NullEmitter struct{}

func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

func (n *NullEmitter) Emit(_ Event) {}

func (n *NullEmitter) EmitBatch(_ context.Context, _ []Event) error {
	return nil
}

func (n *NullEmitter) Flush(_ context.Context) error {
	return nil
}
