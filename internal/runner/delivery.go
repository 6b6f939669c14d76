package runner

import "context"

// Delivery hands a finished archive to an external collaborator, such as a
// mailer. The pipeline itself only serves archives over the download route.
type Delivery interface {
	Deliver(ctx context.Context, archivePath string) error
}

// NoopDelivery is the default when no collaborator is configured.
type NoopDelivery struct{}

func (NoopDelivery) Deliver(ctx context.Context, archivePath string) error { return nil }
