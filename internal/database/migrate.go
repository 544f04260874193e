package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are idempotent CREATE TABLE statements executed at startup.
// Registrations are split across two tables because the two signup kinds
// carry different columns and independent ID sequences; occupancy queries
// always aggregate over both.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(191) NOT NULL,
		session_type  ENUM('general','member','both') NOT NULL DEFAULT 'both',
		child_limit   INT NOT NULL,
		is_active     TINYINT(1) NOT NULL DEFAULT 1,
		display_order INT NOT NULL DEFAULT 0,
		session_date  DATETIME NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_sessions_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS general_registrations (
		id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name          VARCHAR(100) NOT NULL,
		last_name           VARCHAR(100) NOT NULL,
		email               VARCHAR(191) NOT NULL,
		phone               VARCHAR(40) NOT NULL,
		street_address      VARCHAR(191) NOT NULL,
		city                VARCHAR(100) NOT NULL,
		state               VARCHAR(40) NOT NULL,
		zip                 VARCHAR(20) NOT NULL,
		num_adults          INT NOT NULL,
		num_children        INT NOT NULL,
		children_details    TEXT,
		comments            TEXT,
		request_info        TINYINT(1) NOT NULL DEFAULT 0,
		session             VARCHAR(191) NOT NULL,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_general_session (session)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS member_registrations (
		id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		member_first_name   VARCHAR(100) NOT NULL,
		member_last_name    VARCHAR(100) NOT NULL,
		first_name          VARCHAR(100) NOT NULL,
		last_name           VARCHAR(100) NOT NULL,
		email               VARCHAR(191) NOT NULL,
		phone               VARCHAR(40) NOT NULL,
		street_address      VARCHAR(191) NOT NULL,
		city                VARCHAR(100) NOT NULL,
		state               VARCHAR(40) NOT NULL,
		zip                 VARCHAR(20) NOT NULL,
		num_adults          INT NOT NULL,
		num_children        INT NOT NULL,
		children_details    TEXT,
		comments            TEXT,
		request_info        TINYINT(1) NOT NULL DEFAULT 0,
		session             VARCHAR(191) NOT NULL,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_member_session (session)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// The unique key on (session_name, registration_id, registration_type)
	// is the duplicate-reminder guard; inserts racing on the same tuple fail
	// with a duplicate-key error that the repository absorbs.
	`CREATE TABLE IF NOT EXISTS reminder_emails_sent (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		session_name      VARCHAR(191) NOT NULL,
		registration_id   BIGINT UNSIGNED NOT NULL,
		registration_type ENUM('general','member') NOT NULL,
		email             VARCHAR(191) NOT NULL,
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_reminder_identity (session_name, registration_id, registration_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
