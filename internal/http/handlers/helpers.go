package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/queue"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so the query
// helpers can run inside or outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func readPathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// parseNumber accepts JSON numbers and numeric strings. Browser clients
// send values like "2.5" for tax percentages, so both forms are valid.
func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func parseID(v any) (int64, bool) {
	f, ok := parseNumber(v)
	if !ok || f != math.Trunc(f) || f <= 0 {
		return 0, false
	}
	return int64(f), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	h.Logger.Error(msg, append(fields, zap.Error(err))...)
	response.Error(w, http.StatusInternalServerError, response.CodeInternal, "internal server error")
}

// publishEvent emits a domain event on the events exchange. Publishing is
// best-effort: a broker outage must never fail the request that already
// committed.
func (h *Handler) publishEvent(ctx context.Context, eventType string, entityID int64) {
	h.publish(ctx, eventType, entityID, "")
}

// publishReservationEvent carries the resulting status so the notification
// translator can pick the right email kind without refetching.
func (h *Handler) publishReservationEvent(ctx context.Context, eventType string, reservationID int64, status string) {
	h.publish(ctx, eventType, reservationID, status)
}

func (h *Handler) publish(ctx context.Context, eventType string, entityID int64, status string) {
	if h.Queue == nil {
		return
	}
	// The request may already be done by the time we publish; the event
	// still has to go out for the committed write.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	payload := map[string]any{"type": eventType, "updatedAt": time.Now().UTC()}
	if strings.HasPrefix(eventType, "order.") {
		payload["orderId"] = entityID
	} else {
		payload["reservationId"] = entityID
	}
	if status != "" {
		payload["status"] = status
	}
	err := h.Queue.PublishJSON(ctx, queue.EventsExchange, eventType, payload)
	if err != nil {
		h.Logger.Warn("event publish failed",
			zap.String("event", eventType),
			zap.Int64("entityId", entityID),
			zap.Error(err))
	}
}
