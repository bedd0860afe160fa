package worker

// email_worker.go
// Processes payment-receipt jobs from QueueEmail: renders the PDF receipt
// and mails it to the customer through the SMTP breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const JobReciboPago = "recibo_pago"

// ReciboPagoJob is the payload of a payment-receipt email.
type ReciboPagoJob struct {
	PagoID      string          `json:"pago_id"`
	ToEmail     string          `json:"to_email"`
	Cliente     string          `json:"cliente"`
	NumeroVenta int64           `json:"numero_venta"`
	Monto       decimal.Decimal `json:"monto"`
	Saldo       decimal.Decimal `json:"saldo"`
	MetodoPago  string          `json:"metodo_pago"`
	Fecha       time.Time       `json:"fecha"`
}

// Enviador is the outbound mail transport.
type Enviador interface {
	Enviar(to, subject, body, pdfPath string) error
}

// EmailWorker turns receipt jobs into emails.
type EmailWorker struct {
	mailer     Enviador
	negocio    string
	pdfStorage string
}

func NewEmailWorker(mailer Enviador, negocio, pdfStorage string) *EmailWorker {
	return &EmailWorker{mailer: mailer, negocio: negocio, pdfStorage: pdfStorage}
}

// Process renders and sends one receipt. Errors are returned so the pool
// can retry; an open breaker counts as a failure too.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var job ReciboPagoJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if job.ToEmail == "" {
		log.Warn().Str("pago_id", job.PagoID).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	path, err := infra.GenerateReciboPagoPDF(infra.ReciboPago{
		PagoID:      job.PagoID,
		Negocio:     w.negocio,
		Cliente:     job.Cliente,
		NumeroVenta: job.NumeroVenta,
		Monto:       job.Monto,
		Saldo:       job.Saldo,
		MetodoPago:  job.MetodoPago,
		Fecha:       job.Fecha,
	}, w.pdfStorage)
	if err != nil {
		return fmt.Errorf("email_worker: pdf: %w", err)
	}

	subject := fmt.Sprintf("%s - Recibo de pago venta #%d", w.negocio, job.NumeroVenta)
	body := fmt.Sprintf("Hola %s,\n\nRegistramos tu pago de $%s. Adjuntamos el recibo.\n",
		job.Cliente, job.Monto.StringFixed(2))
	if err := w.mailer.Enviar(job.ToEmail, subject, body, path); err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Str("to", job.ToEmail).Msg("email_worker: smtp breaker open")
		}
		return err
	}
	log.Info().Str("to", job.ToEmail).Str("pago_id", job.PagoID).Msg("email_worker: recibo sent")
	return nil
}
