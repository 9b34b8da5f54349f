package ports

import "context"

// Mailer envía los correos transaccionales del portal. Los enlaces llegan ya armados.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, link string) error
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, name, link string) error
}
