package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns []string
}

// Composite indexes backing the hot lookups (tree assembly, comment threads,
// token resolution). Single-column indexes come from the model tags.
var indexes = []index{
	{"tasks", "idx_tasks_project_parent", []string{"project_id", "parent_task_id"}},
	{"tasks", "idx_tasks_project_status", []string{"project_id", "status"}},
	{"comments", "idx_comments_task_created", []string{"task_id", "created_at"}},
	{"auth_tokens", "idx_auth_tokens_user_active", []string{"user_id", "is_active"}},
	{"project_members", "idx_project_members_project_role", []string{"project_id", "role"}},
}

// AddIndexes creates missing composite indexes. It is safe to run repeatedly.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
