package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "servesync.events"
	EventsQueue    = "servesync.notifications"

	NotificationJobsExchange = "servesync.notification_jobs"
	NotificationJobsQueue    = "servesync.notification_jobs.process"
	NotificationJobsDLQ      = "servesync.notification_jobs.dlq"
	NotificationJobsRK       = "process"
	NotificationJobsDeadRK   = "dead"
)

// Event routing keys published by the handlers.
const (
	EventOrderPaid                = "order.paid"
	EventReservationSubmitted     = "reservation.submitted"
	EventReservationStatusUpdated = "reservation.status.updated"
)

type domainEvent struct {
	Type          string     `json:"type"`
	OrderID       int64      `json:"orderId,omitempty"`
	ReservationID int64      `json:"reservationId,omitempty"`
	Status        string     `json:"status,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// EnsureNotificationJobsTopology declares the direct jobs exchange with its
// dead-letter queue. The external email/SMS worker consumes the jobs queue.
func EnsureNotificationJobsTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}

	if err := qc.EnsureExchange(NotificationJobsExchange, "direct"); err != nil {
		return err
	}

	if _, err := qc.EnsureQueue(NotificationJobsDLQ); err != nil {
		return err
	}
	if err := qc.BindQueue(NotificationJobsDLQ, NotificationJobsExchange, NotificationJobsDeadRK); err != nil {
		return err
	}

	_, err := qc.EnsureQueueWithArgs(NotificationJobsQueue, amqp.Table{
		"x-dead-letter-exchange":    NotificationJobsExchange,
		"x-dead-letter-routing-key": NotificationJobsDeadRK,
	})
	if err != nil {
		return err
	}
	return qc.BindQueue(NotificationJobsQueue, NotificationJobsExchange, NotificationJobsRK)
}

// ProcessEventToJobs translates a domain event into the notification job the
// external worker understands.
func ProcessEventToJobs(ctx context.Context, db *pgxpool.Pool, qc *Client, body []byte) error {
	if db == nil || qc == nil {
		return nil
	}

	var evt domainEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}

	switch evt.Type {
	case EventOrderPaid:
		return processOrderPaid(ctx, db, qc, evt)
	case EventReservationSubmitted, EventReservationStatusUpdated:
		return processReservationEvent(ctx, db, qc, evt)
	default:
		// unknown envelope, drop
		return nil
	}
}

func processOrderPaid(ctx context.Context, db *pgxpool.Pool, qc *Client, evt domainEvent) error {
	var (
		customerName *string
		mobileNumber *string
		grandTotal   float64
	)
	query := `
		select customer_name, mobile_number, total_price_with_taxes
		from orders
		where id = $1 and status = 'PAID'
	`
	if err := db.QueryRow(ctx, query, evt.OrderID).Scan(&customerName, &mobileNumber, &grandTotal); err != nil {
		return err
	}

	mobile := ""
	if mobileNumber != nil {
		mobile = strings.TrimSpace(*mobileNumber)
	}
	if mobile == "" {
		return nil
	}

	job := map[string]any{
		"kind": "sms.payment_receipt",
		"payload": map[string]any{
			"orderId":      fmt.Sprintf("%d", evt.OrderID),
			"customerName": customerName,
			"mobileNumber": mobile,
			"amount":       grandTotal,
		},
		"createdAt": time.Now().UTC().Format(time.RFC3339),
		"attempt":   1,
	}
	return qc.PublishJSON(ctx, NotificationJobsExchange, NotificationJobsRK, job)
}

func processReservationEvent(ctx context.Context, db *pgxpool.Pool, qc *Client, evt domainEvent) error {
	kind := EmailKindForReservationEvent(evt.Type, evt.Status)
	if kind == "" {
		return nil
	}

	var (
		customerName    string
		customerEmail   string
		reservationDate string
		reservationTime string
		partySize       int32
		status          string
	)
	query := `
		select customer_name, customer_email, reservation_date::text, reservation_time::text,
		       party_size, reservation_status
		from reservations
		where id = $1
	`
	if err := db.QueryRow(ctx, query, evt.ReservationID).Scan(
		&customerName, &customerEmail, &reservationDate, &reservationTime, &partySize, &status,
	); err != nil {
		return err
	}

	toEmail := strings.TrimSpace(customerEmail)
	if toEmail == "" {
		return nil
	}

	job := map[string]any{
		"kind": kind,
		"payload": map[string]any{
			"reservationId":   fmt.Sprintf("%d", evt.ReservationID),
			"customerName":    customerName,
			"customerEmail":   toEmail,
			"reservationDate": reservationDate,
			"reservationTime": reservationTime,
			"partySize":       partySize,
			"status":          status,
		},
		"createdAt": time.Now().UTC().Format(time.RFC3339),
		"attempt":   1,
	}
	return qc.PublishJSON(ctx, NotificationJobsExchange, NotificationJobsRK, job)
}

// EmailKindForReservationEvent maps a reservation event to a notification job
// kind; empty means no customer-facing message is sent.
func EmailKindForReservationEvent(eventType string, status string) string {
	if eventType == EventReservationSubmitted {
		return "email.reservation_received"
	}
	if eventType != EventReservationStatusUpdated {
		return ""
	}
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "CONFIRMED":
		return "email.reservation_confirmed"
	case "REJECTED":
		return "email.reservation_rejected"
	case "CANCELLED":
		return "email.reservation_cancelled"
	default:
		return ""
	}
}
