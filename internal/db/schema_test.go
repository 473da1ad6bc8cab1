package db

import (
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second schema run: %v", err)
	}
}

func TestInUseCheckConstraint(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO inventory_items (o_id, name, count, in_use, created_at, updated_at)
		VALUES (1, 'Sofa', 2, 3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Fatal("expected check constraint to reject in_use > count")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO extra_images (item_id, path, created_at) VALUES (42, '/x.jpg', CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Fatal("expected foreign key violation for unknown item")
	}
}

func TestDeletedIDsNotReused(t *testing.T) {
	database := NewTestDB(t)
	if _, err := database.Exec(`INSERT INTO users (id, username, password_hash) VALUES (1, 'owner', 'x')`); err != nil {
		t.Fatalf("creating owner: %v", err)
	}

	for _, table := range []struct{ name, insert string }{
		{"inventory_items", `INSERT INTO inventory_items (o_id, name, created_at, updated_at)
			VALUES ((SELECT COALESCE(MAX(o_id), 0) + 1 FROM inventory_items), 'Sofa', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`},
		{"projects", `INSERT INTO projects (name, owner_id, created_at, updated_at)
			VALUES ('Elm Street', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`},
	} {
		t.Run(table.name, func(t *testing.T) {
			res, err := database.Exec(table.insert)
			if err != nil {
				t.Fatalf("first insert: %v", err)
			}
			first, _ := res.LastInsertId()

			if _, err := database.Exec(`DELETE FROM `+table.name+` WHERE id = ?`, first); err != nil {
				t.Fatalf("delete: %v", err)
			}

			res, err = database.Exec(table.insert)
			if err != nil {
				t.Fatalf("second insert: %v", err)
			}
			second, _ := res.LastInsertId()
			if second <= first {
				t.Errorf("id %d reused after delete (got %d)", first, second)
			}
		})
	}
}
