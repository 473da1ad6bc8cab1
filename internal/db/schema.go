package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    o_id             INTEGER NOT NULL,
    name             TEXT NOT NULL,
    category         TEXT NOT NULL DEFAULT '',
    vendor           TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    location         TEXT NOT NULL DEFAULT '',
    count            INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
    in_use           INTEGER NOT NULL DEFAULT 0 CHECK (in_use >= 0 AND in_use <= count),
    price            TEXT NOT NULL DEFAULT '0',
    cost             TEXT NOT NULL DEFAULT '0',
    width            REAL NOT NULL DEFAULT 0,
    height           REAL NOT NULL DEFAULT 0,
    depth            REAL NOT NULL DEFAULT 0,
    image_path       TEXT,
    image_width      INTEGER,
    image_height     INTEGER,
    thumb_path       TEXT,
    thumb_width      INTEGER,
    thumb_height     INTEGER,
    active           INTEGER NOT NULL DEFAULT 1,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_items_o_id ON inventory_items(o_id);
CREATE INDEX IF NOT EXISTS idx_inventory_items_category ON inventory_items(category);

CREATE TABLE IF NOT EXISTS extra_images (
    id           INTEGER PRIMARY KEY,
    item_id      INTEGER NOT NULL REFERENCES inventory_items(id),
    path         TEXT NOT NULL,
    width        INTEGER NOT NULL DEFAULT 0,
    height       INTEGER NOT NULL DEFAULT 0,
    title        TEXT NOT NULL DEFAULT '',
    thumb_path   TEXT,
    thumb_width  INTEGER,
    thumb_height INTEGER,
    created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extra_images_item ON extra_images(item_id);

CREATE TABLE IF NOT EXISTS projects (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    name               TEXT NOT NULL,
    status             TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'completed', 'cancelled')),
    owner_id           INTEGER NOT NULL REFERENCES users(id),
    address            TEXT NOT NULL DEFAULT '',
    start_date         DATETIME,
    end_date           DATETIME,
    revenue            TEXT,
    notes              TEXT NOT NULL DEFAULT '',
    highlighted        INTEGER NOT NULL DEFAULT 0,
    inventory_assigned INTEGER NOT NULL DEFAULT 0,
    priority           INTEGER NOT NULL DEFAULT 0,
    created_at         DATETIME NOT NULL,
    updated_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);
CREATE INDEX IF NOT EXISTS idx_projects_highlighted ON projects(highlighted, created_at);

CREATE TABLE IF NOT EXISTS project_images (
    id            INTEGER PRIMARY KEY,
    project_id    INTEGER NOT NULL REFERENCES projects(id),
    path          TEXT NOT NULL,
    width         INTEGER NOT NULL DEFAULT 0,
    height        INTEGER NOT NULL DEFAULT 0,
    thumb_path    TEXT,
    thumb_width   INTEGER,
    thumb_height  INTEGER,
    display_order INTEGER NOT NULL,
    created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_project_images_project ON project_images(project_id, display_order);

CREATE TABLE IF NOT EXISTS project_inventory (
    id             INTEGER PRIMARY KEY,
    project_id     INTEGER NOT NULL REFERENCES projects(id),
    inventory_id   INTEGER NOT NULL,
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    price_per_item TEXT NOT NULL DEFAULT '0',
    assigned_at    DATETIME NOT NULL,
    returned_at    DATETIME,
    assigned_by    INTEGER REFERENCES users(id),
    returned_by    INTEGER REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_project_inventory_project ON project_inventory(project_id);
CREATE INDEX IF NOT EXISTS idx_project_inventory_item_open ON project_inventory(inventory_id) WHERE returned_at IS NULL;
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
//
// The list is empty because the schema above is the first released one. Column
// changes to existing databases go here, never into schema, since CREATE TABLE
// IF NOT EXISTS leaves existing tables untouched.
var migrations = []string{}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate ensures the schema and then runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
