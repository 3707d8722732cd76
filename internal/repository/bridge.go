package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/deppfellow/bridge-api/internal/schema"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Querier is the part of *pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Options configures a BridgeRepository.
type Options struct {
	Schema string
	Table  string

	// QueryTimeout bounds every statement. Zero means no extra deadline.
	QueryTimeout time.Duration

	// SlowQueryThreshold logs statements at warn level when exceeded.
	SlowQueryThreshold time.Duration

	Logger *zerolog.Logger
}

// BridgeRepository reads bridge survey records.
type BridgeRepository struct {
	db       Querier
	registry *schema.Registry
	opts     Options
	logger   zerolog.Logger

	table        string
	selectAll    string
	selectByCode string
}

// NewBridgeRepository builds the repository and prepares its statements.
func NewBridgeRepository(db Querier, registry *schema.Registry, opts Options) *BridgeRepository {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "bridge_repository").Logger()
	}

	table := pgx.Identifier{opts.Schema, opts.Table}.Sanitize()
	selectAll := fmt.Sprintf("SELECT %s FROM %s", registry.SelectList(), table)

	return &BridgeRepository{
		db:           db,
		registry:     registry,
		opts:         opts,
		logger:       logger,
		table:        table,
		selectAll:    selectAll,
		selectByCode: selectAll + " WHERE " + pgx.Identifier{model.ProjectCodeColumn}.Sanitize() + " = $1",
	}
}

// FetchAll returns every record in the table. The result is never nil.
func (r *BridgeRepository) FetchAll(ctx context.Context) ([]model.BridgeRecord, error) {
	return r.fetchRecords(ctx, "fetch_all", r.selectAll)
}

// FetchByProjectCode returns the records whose Project_Code equals code
// exactly. No match yields an empty slice.
func (r *BridgeRepository) FetchByProjectCode(ctx context.Context, code string) ([]model.BridgeRecord, error) {
	return r.fetchRecords(ctx, "fetch_by_project_code", r.selectByCode, code)
}

func (r *BridgeRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.opts.QueryTimeout)
}

func (r *BridgeRepository) fetchRecords(ctx context.Context, op, sql string, args ...any) ([]model.BridgeRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: query", op)
	}
	defer rows.Close()

	// Field descriptions belong to the pooled connection and are gone once
	// the rows are exhausted, so they are read before iterating.
	if err := r.registry.CheckFields(fieldNames(rows.FieldDescriptions())); err != nil {
		return nil, errors.Wrap(err, op)
	}

	records := make([]model.BridgeRecord, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrapf(err, "%s: read row", op)
		}
		normalizeValues(values)

		record, err := r.registry.Label(values)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s: iterate rows", op)
	}

	r.logQuery(op, start, len(records))
	return records, nil
}

func (r *BridgeRepository) logQuery(op string, start time.Time, n int) {
	elapsed := time.Since(start)

	event := r.logger.Debug()
	if r.opts.SlowQueryThreshold > 0 && elapsed > r.opts.SlowQueryThreshold {
		event = r.logger.Warn().Bool("slow", true)
	}
	event.
		Str("operation", op).
		Dur("duration", elapsed).
		Int("rows", n).
		Msg("query completed")
}

// VerifySchema compares the registry against the live table definition.
// A missing table or any missing registry column is schema drift.
func (r *BridgeRepository) VerifySchema(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, r.opts.Schema, r.opts.Table)
	if err != nil {
		return errors.Wrap(err, "verify_schema: query")
	}
	defer rows.Close()

	var present []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return errors.Wrap(err, "verify_schema: scan")
		}
		present = append(present, name)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "verify_schema: iterate rows")
	}

	if len(present) == 0 {
		return fmt.Errorf("%w: table %s not found", schema.ErrSchemaDrift, r.table)
	}
	if missing := r.registry.Missing(present); len(missing) > 0 {
		return fmt.Errorf("%w: table %s is missing columns %v", schema.ErrSchemaDrift, r.table, missing)
	}

	r.logger.Debug().Int("columns", len(present)).Msg("table matches schema registry")
	return nil
}

func fieldNames(fds []pgconn.FieldDescription) []string {
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

func normalizeValues(values []any) {
	for i, v := range values {
		values[i] = normalizeValue(v)
	}
}

// normalizeValue turns driver-specific values into plain scalars the record
// encoder understands.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid || x.NaN || x.InfinityModifier != pgtype.Finite {
			return nil
		}
		b, err := x.MarshalJSON()
		if err != nil {
			f, ferr := x.Float64Value()
			if ferr != nil || !f.Valid {
				return nil
			}
			return f.Float64
		}
		return json.Number(b)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Text:
		if !x.Valid {
			return nil
		}
		return x.String
	default:
		return v
	}
}
