package repository

import (
	"context"
	"database/sql"
	"fmt"

	dbpkg "dailyart/shared/pkg/db"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(150) NOT NULL,
		username VARCHAR(32) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		first_place_wins BIGINT NOT NULL DEFAULT 0,
		second_place_wins BIGINT NOT NULL DEFAULT 0,
		third_place_wins BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		image_ref VARCHAR(255) NOT NULL,
		thumbnail_ref VARCHAR(255) NOT NULL DEFAULT '',
		title VARCHAR(128) NOT NULL,
		contest_date CHAR(10) NOT NULL,
		submitted_at DATETIME(6) NOT NULL,
		prompt VARCHAR(255) NOT NULL,
		score BIGINT NOT NULL DEFAULT 0,
		first_place_votes BIGINT NOT NULL DEFAULT 0,
		second_place_votes BIGINT NOT NULL DEFAULT 0,
		third_place_votes BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_submissions_user_date (user_id, contest_date),
		KEY idx_submissions_date_rank (contest_date, score, submitted_at),
		CONSTRAINT fk_submissions_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS votes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		contest_date CHAR(10) NOT NULL,
		cast_at DATETIME(6) NOT NULL,
		first_place_submission_id BIGINT UNSIGNED NOT NULL,
		second_place_submission_id BIGINT UNSIGNED NOT NULL,
		third_place_submission_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_votes_user_date (user_id, contest_date),
		CONSTRAINT fk_votes_first FOREIGN KEY (first_place_submission_id) REFERENCES submissions (id),
		CONSTRAINT fk_votes_second FOREIGN KEY (second_place_submission_id) REFERENCES submissions (id),
		CONSTRAINT fk_votes_third FOREIGN KEY (third_place_submission_id) REFERENCES submissions (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS contest_prompts (
		contest_date CHAR(10) NOT NULL PRIMARY KEY,
		prompt VARCHAR(255) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS period_closures (
		contest_date CHAR(10) NOT NULL PRIMARY KEY,
		closed_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_place_wins INTEGER NOT NULL DEFAULT 0,
		second_place_wins INTEGER NOT NULL DEFAULT 0,
		third_place_wins INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		image_ref TEXT NOT NULL,
		thumbnail_ref TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		contest_date CHAR(10) NOT NULL,
		submitted_at DATETIME NOT NULL,
		prompt TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		first_place_votes INTEGER NOT NULL DEFAULT 0,
		second_place_votes INTEGER NOT NULL DEFAULT 0,
		third_place_votes INTEGER NOT NULL DEFAULT 0,
		UNIQUE (user_id, contest_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_date_rank ON submissions (contest_date, score, submitted_at)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		contest_date CHAR(10) NOT NULL,
		cast_at DATETIME NOT NULL,
		first_place_submission_id INTEGER NOT NULL REFERENCES submissions (id),
		second_place_submission_id INTEGER NOT NULL REFERENCES submissions (id),
		third_place_submission_id INTEGER NOT NULL REFERENCES submissions (id),
		UNIQUE (user_id, contest_date)
	)`,
	`CREATE TABLE IF NOT EXISTS contest_prompts (
		contest_date CHAR(10) NOT NULL PRIMARY KEY,
		prompt TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS period_closures (
		contest_date CHAR(10) NOT NULL PRIMARY KEY,
		closed_at DATETIME NOT NULL
	)`,
}

// Migrate creates the contest tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	statements := mysqlSchema
	if driver == dbpkg.DriverSQLite {
		statements = sqliteSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// ExpectedSchema lists the columns the repositories rely on.
func ExpectedSchema() []dbpkg.TableSchema {
	return []dbpkg.TableSchema{
		{Name: "users", Columns: []dbpkg.ColumnType{
			{Name: "id"}, {Name: "email"}, {Name: "username"}, {Name: "password_hash"},
			{Name: "first_place_wins"}, {Name: "second_place_wins"}, {Name: "third_place_wins"},
			{Name: "created_at"},
		}},
		{Name: "submissions", Columns: []dbpkg.ColumnType{
			{Name: "id"}, {Name: "user_id"}, {Name: "image_ref"}, {Name: "thumbnail_ref"},
			{Name: "title"}, {Name: "contest_date", DataType: "char"}, {Name: "submitted_at"},
			{Name: "prompt"}, {Name: "score"},
			{Name: "first_place_votes"}, {Name: "second_place_votes"}, {Name: "third_place_votes"},
		}},
		{Name: "votes", Columns: []dbpkg.ColumnType{
			{Name: "id"}, {Name: "user_id"}, {Name: "contest_date", DataType: "char"}, {Name: "cast_at"},
			{Name: "first_place_submission_id"}, {Name: "second_place_submission_id"}, {Name: "third_place_submission_id"},
		}},
		{Name: "contest_prompts", Columns: []dbpkg.ColumnType{
			{Name: "contest_date", DataType: "char"}, {Name: "prompt"}, {Name: "updated_at"},
		}},
		{Name: "period_closures", Columns: []dbpkg.ColumnType{
			{Name: "contest_date", DataType: "char"}, {Name: "closed_at"},
		}},
	}
}
