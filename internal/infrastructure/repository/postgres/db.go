// Package postgres provides PostgreSQL repositories built on sqlx and
// go-sqlbuilder. Soft-deleted rows stay in the tables and are filtered on
// deleted_at.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolation = "23505"

// Config holds connection settings
type Config struct {
	URL          string
	MaxOpenConns int
}

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type store struct {
	db     *sqlx.DB
	tracer trace.Tracer
	logger *slog.Logger
}

func (s store) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("db.system", "postgresql"))
	span.SetAttributes(attrs...)
	return ctx, span
}

// fail records an unexpected database error and wraps it with the failed action.
func (s store) fail(ctx context.Context, span trace.Span, action string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, action)
	s.logger.ErrorContext(ctx, "Database operation failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s: %w", action, err)
}

func (s store) notFound(ctx context.Context, span trace.Span, entity, id string) error {
	err := domain.NewNotFoundError(entity, id)
	span.RecordError(err)
	span.SetStatus(codes.Error, entity+" not found")
	s.logger.DebugContext(ctx, "Entity not found in repository",
		slog.String("entity", entity),
		slog.String("id", id),
	)
	return err
}

// table performs the row operations every entity shares
type table[T any] struct {
	store
	name    string
	entity  string
	columns *sqlbuilder.Struct
}

func newTable[T any](s store, name, entity string) table[T] {
	return table[T]{
		store:   s,
		name:    name,
		entity:  entity,
		columns: sqlbuilder.NewStruct(new(T)).For(sqlbuilder.PostgreSQL),
	}
}

func (t table[T]) insert(ctx context.Context, span trace.Span, row *T) error {
	ib := t.columns.InsertInto(t.name, row)
	query, args := ib.Build()

	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return t.fail(ctx, span, "insert "+t.entity, err)
	}
	return nil
}

func (t table[T]) get(ctx context.Context, span trace.Span, id string) (*T, error) {
	sb := t.columns.SelectFrom(t.name)
	sb.Where(sb.Equal("id", id), sb.IsNull("deleted_at"))

	query, args := sb.Build()
	row := new(T)
	err := t.db.GetContext(ctx, row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, t.notFound(ctx, span, t.entity, id)
	}
	if err != nil {
		return nil, t.fail(ctx, span, "get "+t.entity, err)
	}
	return row, nil
}

// first returns the earliest live row matching where
func (t table[T]) first(ctx context.Context, span trace.Span, key string, where func(sb *sqlbuilder.SelectBuilder) []string) (*T, error) {
	sb := t.columns.SelectFrom(t.name)
	sb.Where(append(where(sb), sb.IsNull("deleted_at"))...)
	sb.OrderBy("created_at ASC", "id ASC")
	sb.Limit(1)

	query, args := sb.Build()
	row := new(T)
	err := t.db.GetContext(ctx, row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, t.notFound(ctx, span, t.entity, key)
	}
	if err != nil {
		return nil, t.fail(ctx, span, "find "+t.entity, err)
	}
	return row, nil
}

func (t table[T]) update(ctx context.Context, span trace.Span, id string, row *T) error {
	ub := t.columns.Update(t.name, row)
	ub.Where(ub.Equal("id", id), ub.IsNull("deleted_at"))

	query, args := ub.Build()
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return t.fail(ctx, span, "update "+t.entity, err)
	}
	return t.affected(ctx, span, res, id)
}

func (t table[T]) softDelete(ctx context.Context, span trace.Span, id string, at time.Time) error {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(t.name).
		Set(
			ub.Assign("deleted_at", at.UTC()),
			ub.Assign("updated_at", at.UTC()),
		).
		Where(ub.Equal("id", id), ub.IsNull("deleted_at"))

	query, args := ub.Build()
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return t.fail(ctx, span, "delete "+t.entity, err)
	}
	return t.affected(ctx, span, res, id)
}

func (t table[T]) affected(ctx context.Context, span trace.Span, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return t.fail(ctx, span, "rows affected", err)
	}
	if n == 0 {
		return t.notFound(ctx, span, t.entity, id)
	}
	return nil
}

// selectAll returns every row matching where, live rows only unless includeDeleted
func (t table[T]) selectAll(ctx context.Context, span trace.Span, includeDeleted bool, where func(sb *sqlbuilder.SelectBuilder) []string, orderBy ...string) ([]*T, error) {
	sb := t.columns.SelectFrom(t.name)
	if conds := t.conditions(sb, includeDeleted, where); len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy(orderBy...)

	query, args := sb.Build()
	rows := make([]*T, 0)
	if err := t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, t.fail(ctx, span, "list "+t.entity, err)
	}
	return rows, nil
}

// page returns one page of rows matching where plus the total match count
func (t table[T]) page(ctx context.Context, span trace.Span, includeDeleted bool, where func(sb *sqlbuilder.SelectBuilder) []string, page domain.Pagination, orderBy ...string) ([]*T, int, error) {
	page = page.Normalize()

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(t.name)
	if conds := t.conditions(countSb, includeDeleted, where); len(conds) > 0 {
		countSb.Where(conds...)
	}

	countQuery, countArgs := countSb.Build()
	var total int
	if err := t.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, t.fail(ctx, span, "count "+t.entity, err)
	}

	sb := t.columns.SelectFrom(t.name)
	if conds := t.conditions(sb, includeDeleted, where); len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy(orderBy...)
	sb.Limit(page.PageSize).Offset(page.Offset())

	query, args := sb.Build()
	rows := make([]*T, 0)
	if err := t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, t.fail(ctx, span, "list "+t.entity, err)
	}

	span.SetAttributes(attribute.Int("db.total", total))
	return rows, total, nil
}

func (t table[T]) conditions(sb *sqlbuilder.SelectBuilder, includeDeleted bool, where func(sb *sqlbuilder.SelectBuilder) []string) []string {
	var conds []string
	if where != nil {
		conds = where(sb)
	}
	if !includeDeleted {
		conds = append(conds, sb.IsNull("deleted_at"))
	}
	return conds
}

func ok(span trace.Span, message string) {
	span.SetStatus(codes.Ok, message)
}
