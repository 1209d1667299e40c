package domain

import "context"

// RegistrationNotifier is told about every admitted registration. Delivery is
// best effort; admission never fails because notification did.
type RegistrationNotifier interface {
	NotifyRegistration(ctx context.Context, data *RegistrationReceivedEmailData) error
}
