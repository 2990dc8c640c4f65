package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrconsole/internal/domain/leave"
	"hrconsole/internal/gateway"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}

// queryRows runs a select and keys each row's values by keys, in order.
func (s *PGStore) queryRows(ctx context.Context, builder sq.SelectBuilder, keys []string) ([]gateway.Row, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]gateway.Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(gateway.Row, len(keys))
		for i, key := range keys {
			if i < len(values) {
				row[key] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *PGStore) List(ctx context.Context, entity string) ([]gateway.Row, error) {
	t, err := tableFor(entity)
	if err != nil {
		return nil, err
	}
	exprs := []string{t.idColumn}
	keys := []string{t.def.IDField}
	for _, c := range t.columns {
		exprs = append(exprs, c.selectExpr())
		keys = append(keys, c.key)
	}
	return s.queryRows(ctx, psql.Select(exprs...).From(t.table).OrderBy(t.idColumn), keys)
}

func (s *PGStore) Create(ctx context.Context, entity string, rec gateway.Row) (int64, error) {
	t, err := tableFor(entity)
	if err != nil {
		return 0, err
	}
	cols := make([]string, 0, len(t.columns))
	vals := make([]any, 0, len(t.columns))
	for _, c := range t.columns {
		cols = append(cols, c.name)
		vals = append(vals, rec[c.key])
	}
	query, args, err := psql.Insert(t.table).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING " + t.idColumn).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert %s: %w", t.table, err)
	}
	var id int64
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapPGError(err)
	}
	return id, nil
}

func (s *PGStore) Update(ctx context.Context, entity string, id int64, rec gateway.Row) error {
	t, err := tableFor(entity)
	if err != nil {
		return err
	}
	builder := psql.Update(t.table)
	for _, c := range t.columns {
		builder = builder.Set(c.name, rec[c.key])
	}
	query, args, err := builder.Where(sq.Eq{t.idColumn: id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", t.table, err)
	}
	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, entity string, id int64) error {
	t, err := tableFor(entity)
	if err != nil {
		return err
	}
	query, args, err := psql.Delete(t.table).Where(sq.Eq{t.idColumn: id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", t.table, err)
	}
	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Colleges(ctx context.Context) ([]gateway.Row, error) {
	return s.queryRows(ctx,
		psql.Select("college_code", "college_name").From("colleges").OrderBy("college_code"),
		[]string{"collegeCode", "collegeName"})
}

func (s *PGStore) Employees(ctx context.Context) ([]gateway.Row, error) {
	return s.queryRows(ctx,
		psql.Select("emp_code", "emp_name").From("employees").OrderBy("emp_code"),
		[]string{"empCode", "empName"})
}

func (s *PGStore) PendingLeaves(ctx context.Context) ([]gateway.Row, error) {
	rows, err := s.queryRows(ctx,
		psql.Select(
			"leave_id",
			"emp_code",
			"leave_type",
			"to_char(from_date, 'YYYY-MM-DD')",
			"to_char(to_date, 'YYYY-MM-DD')",
			"no_of_days::text",
		).From("leave_requests").
			Where(sq.Eq{"status": leaveStatusPending}).
			OrderBy("from_date", "leave_id"),
		[]string{"leaveId", "empCode", "leaveType", "fromDate", "toDate", "noOfDays"})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if days, ok := row["noOfDays"].(string); ok {
			row["noOfDays"] = json.Number(days)
		}
	}
	return rows, nil
}

func (s *PGStore) ApproveLeaves(ctx context.Context, batch []leave.Approval) (int, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	approved := 0
	for _, a := range batch {
		query, args, err := psql.Update("leave_requests").
			Set("status", leaveStatusApproved).
			Set("approved_at", sq.Expr("now()")).
			Where(sq.Eq{
				"emp_code":   strings.TrimSpace(a.EmpCode),
				"leave_type": strings.TrimSpace(a.LeaveType),
				"status":     leaveStatusPending,
			}).
			Where("from_date = ?::date AND to_date = ?::date", strings.TrimSpace(a.FromDate), strings.TrimSpace(a.ToDate)).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build approve: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		approved += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return approved, nil
}

func (s *PGStore) FindUser(ctx context.Context, username string) (User, error) {
	query, args, err := psql.Select("username", "password_hash", "role").
		From("users").
		Where(sq.Eq{"lower(username)": strings.ToLower(strings.TrimSpace(username))}).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("build user lookup: %w", err)
	}
	var u User
	err = s.DB.QueryRow(ctx, query, args...).Scan(&u.Username, &u.PasswordHash, &u.RoleName)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
