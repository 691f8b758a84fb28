package bmpblt

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/bodgit/bmpblt/blt"
	_ "github.com/mattn/go-sqlite3"
)

// ResourceDB stores BMP images by name.
type ResourceDB struct {
	db *sql.DB
}

// Resource describes an image held in a ResourceDB.
type Resource struct {
	ID           int64
	Name         string
	SHA1         string
	Width        int
	Height       int
	BitsPerPixel int
}

// NewResourceDB opens, creating if necessary, the SQLite database in file.
func NewResourceDB(file string) (*ResourceDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS resource (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, bpp INTEGER NOT NULL, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &ResourceDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *ResourceDB) Close() error {
	return db.db.Close()
}

// AddResource stores b under name, replacing anything already there. b must
// decode without error.
func (db *ResourceDB) AddResource(name string, b []byte) (int64, error) {
	h, err := blt.ReadHeader(b)
	if err != nil {
		return 0, err
	}
	m, err := blt.Decode(b, nil)
	if err != nil {
		return 0, err
	}
	sha := fmt.Sprintf("%X", sha1.Sum(b))

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM resource WHERE name = ? AND sha1 = ?", name, sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT OR REPLACE INTO resource (name, sha1, width, height, bpp, data) VALUES (?, ?, ?, ?, ?, ?)", name, sha, m.Width, m.Height, h.BitsPerPixel, b)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// FindResource returns the image stored under name, or nil if there isn't
// one.
func (db *ResourceDB) FindResource(name string) ([]byte, error) {
	var b []byte
	switch err := db.db.QueryRow("SELECT data FROM resource WHERE name = ?", name).Scan(&b); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return b, nil
	default:
		return nil, err
	}
}

// Resources lists everything in the database ordered by name.
func (db *ResourceDB) Resources() ([]Resource, error) {
	rows, err := db.db.Query("SELECT id, name, sha1, width, height, bpp FROM resource ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.SHA1, &r.Width, &r.Height, &r.BitsPerPixel); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}
