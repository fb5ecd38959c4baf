package annotation

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lewtec/cocotool/internal/domain"
	"github.com/lewtec/cocotool/internal/repository"
)

// GetDatabase opens the SQLite database, creating and migrating it as needed
func GetDatabase(filename string) (*sql.DB, error) {
	log.Printf("db: opening %s", filename)
	db, err := repository.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening database %q: %w", filename, err)
	}
	return db, nil
}

// OpenStore opens the database and wraps it in repositories. The returned
// close function releases the database.
func OpenStore(filename string) (*domain.Store, func() error, error) {
	db, err := GetDatabase(filename)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewStore(db), db.Close, nil
}
