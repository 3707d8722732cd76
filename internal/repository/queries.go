package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownQuery is returned for a name outside the allow-list.
	ErrUnknownQuery = errors.New("unknown query")

	// ErrQueryArity is returned when the argument count does not match
	// the query's parameters.
	ErrQueryArity = errors.New("wrong number of query arguments")
)

// NamedQuery is one allow-listed, parameterised statement.
type NamedQuery struct {
	Name        string
	Description string
	Params      []string

	// build renders the statement for a sanitized table name and the
	// registry's select list. Values are always bound as $n arguments.
	build func(table, columns string) string
}

// QueryResult holds raw, unlabeled tuples.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

var namedQueries = map[string]NamedQuery{
	"count": {
		Name:        "count",
		Description: "Number of records in the table",
		build: func(table, _ string) string {
			return "SELECT count(*) AS total FROM " + table
		},
	},
	"count_by_stage": {
		Name:        "count_by_stage",
		Description: "Number of records per project stage",
		build: func(table, _ string) string {
			stage := ident("Stage")
			return fmt.Sprintf("SELECT %s, count(*) AS total FROM %s GROUP BY %s ORDER BY %s", stage, table, stage, stage)
		},
	},
	"project_codes": {
		Name:        "project_codes",
		Description: "Distinct project codes",
		build: func(table, _ string) string {
			code := ident("Project_Code")
			return fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s", code, table, code)
		},
	},
	"by_stage": {
		Name:        "by_stage",
		Description: "Records in the given project stage",
		Params:      []string{"stage"},
		build: func(table, columns string) string {
			return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", columns, table, ident("Stage"))
		},
	},
	"by_nearest_city": {
		Name:        "by_nearest_city",
		Description: "Records whose nearest city is the given name",
		Params:      []string{"city"},
		build: func(table, columns string) string {
			return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", columns, table, ident("Name_nearest_city"))
		},
	},
	"rejected": {
		Name:        "rejected",
		Description: "Projects flagged for rejection, with the reason",
		build: func(table, _ string) string {
			return fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s IS NOT NULL AND %s <> '' ORDER BY %s",
				ident("Project_Code"), ident("Bridge_Name"), ident("Rejection_Reason"), table,
				ident("Rejection_Reason"), ident("Rejection_Reason"), ident("Project_Code"))
		},
	},
}

// NamedQueries lists the allow-listed queries sorted by name.
func NamedQueries() []NamedQuery {
	out := make([]NamedQuery, 0, len(namedQueries))
	for _, q := range namedQueries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Usage renders the query name and its parameters, e.g. "by_stage <stage>".
func (q NamedQuery) Usage() string {
	if len(q.Params) == 0 {
		return q.Name
	}
	return q.Name + " <" + strings.Join(q.Params, "> <") + ">"
}

// FetchCustom runs an allow-listed query and returns its raw tuples.
// Arbitrary SQL is never accepted.
func (r *BridgeRepository) FetchCustom(ctx context.Context, name string, args ...string) (*QueryResult, error) {
	q, ok := namedQueries[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownQuery, "%q", name)
	}
	if len(args) != len(q.Params) {
		return nil, errors.Wrapf(ErrQueryArity, "%s expects %d, got %d", q.Usage(), len(q.Params), len(args))
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	op := "fetch_custom:" + name

	bound := make([]any, len(args))
	for i, a := range args {
		bound[i] = a
	}

	rows, err := r.db.Query(ctx, q.build(r.table, r.registry.SelectList()), bound...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: query", op)
	}
	defer rows.Close()

	result := &QueryResult{
		Columns: fieldNames(rows.FieldDescriptions()),
		Rows:    make([][]any, 0),
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrapf(err, "%s: read row", op)
		}
		normalizeValues(values)
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s: iterate rows", op)
	}

	r.logQuery(op, start, len(result.Rows))
	return result, nil
}
