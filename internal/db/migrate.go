package db

import (
	"fmt"

	"github.com/visora-labs/visora-relay/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// autoMigrateModels lists every owned table in migration order.
func autoMigrateModels() []any {
	return []any{
		&models.User{},
		&models.APIKey{},
		&models.UsageLog{},
		&models.ChatMessage{},
		&models.PushSubscription{},
		&models.GeneratedImage{},
	}
}

// migratePostgres applies PostgreSQL-specific schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(autoMigrateModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_api_keys_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_api_keys_user_id_created_at
				ON api_keys (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_usage_logs_key_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_usage_logs_key_id_created_at
				ON usage_logs (key_id, created_at DESC)
			`,
		},
		{
			name: "idx_usage_logs_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_usage_logs_user_id_created_at
				ON usage_logs (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_chat_messages_chat_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_chat_messages_chat_id_created_at
				ON chat_messages (chat_id, created_at ASC)
			`,
		},
		{
			name: "idx_users_anonymous_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_anonymous_created_at
				ON users (anonymous, created_at DESC)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}

// migrateSQLite applies SQLite-specific schema updates and indexes.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(autoMigrateModels()...); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_api_keys_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_api_keys_user_id_created_at
				ON api_keys (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_usage_logs_key_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_usage_logs_key_id_created_at
				ON usage_logs (key_id, created_at DESC)
			`,
		},
		{
			name: "idx_usage_logs_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_usage_logs_user_id_created_at
				ON usage_logs (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_chat_messages_chat_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_chat_messages_chat_id_created_at
				ON chat_messages (chat_id, created_at ASC)
			`,
		},
		{
			name: "idx_users_anonymous_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_anonymous_created_at
				ON users (anonymous, created_at DESC)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}
