package configlibsql

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct is the json config of a database, `file` is either a local sqlite
// file or a remote libsql url (libsql://, http://, https://, ws://, wss://).
type Struct struct {
	File      string `json:"file"`
	AuthToken string `json:"auth_token"`
}

var remoteSchemes = []string{"libsql://", "http://", "https://", "ws://", "wss://"}

func (config Struct) IsRemote() bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(config.File, scheme) {
			return true
		}
	}
	return false
}

func (config Struct) OpenDB() (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if config.IsRemote() {
		dsn := config.File
		if config.AuthToken != "" {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn = fmt.Sprintf("%s%sauthToken=%s", dsn, sep, config.AuthToken)
		}
		return sql.Open("libsql", dsn)
	}

	if config.File != ":memory:" {
		_, statErr := os.Stat(config.File)
		if os.IsNotExist(statErr) {
			f, err := os.Create(config.File)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}

	// sqlite only supports a single writer, serializing through one
	// connection avoids SQLITE_BUSY and keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	if config.File != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
