package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/platform/config"
)

// DemoColleges are inserted on first start so the college lookup is never
// empty on a fresh database.
var DemoColleges = [][2]string{
	{"1", "City College"},
	{"2", "Riverside Institute"},
	{"3", "Hillview School"},
}

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureColleges(ctx, pool); err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminUsername, cfg.SeedAdminPassword)
}

func ensureColleges(ctx context.Context, pool *pgxpool.Pool) error {
	for _, c := range DemoColleges {
		_, err := pool.Exec(ctx, "INSERT INTO colleges (college_code, college_name) VALUES ($1, $2) ON CONFLICT (college_code) DO NOTHING", c[0], c[1])
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var existing string
	err := pool.QueryRow(ctx, "SELECT username FROM users WHERE lower(username) = lower($1)", username).Scan(&existing)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3)", username, hash, auth.RoleAdmin)
	return err
}
