package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/athenaeum/data"
)

type libraries interface {
	CreateLibrary(library *data.Library) error
	GetLibrary(libraryID int64) (*data.Library, error)
	GetLibraryByCode(code string) (*data.Library, error)
	UpdateLibrary(library *data.Library) error
	DeleteLibrary(libraryID int64) error
	GetAllLibraries(search string, filters data.Filters) ([]*data.Library, data.Metadata, error)
}

// CreateLibrary creates a new library branch record.
func (r *repository) CreateLibrary(library *data.Library) error {
	query := `
		INSERT INTO libraries (code, name, address, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version`
	args := []interface{}{library.Code, library.Name, library.Address, library.ContactEmail, library.ContactPhone}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&library.ID,
		&library.CreatedAt,
		&library.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "libraries_code_key"`:
			return ErrDuplicateRecord
		default:
			return err
		}
	}
	return nil
}

// GetLibrary retrieves a library record by its ID.
func (r *repository) GetLibrary(libraryID int64) (*data.Library, error) {
	if libraryID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, code, name, address, contact_email, contact_phone, version
		FROM libraries
		WHERE id = $1`
	var library data.Library
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, libraryID).Scan(
		&library.ID,
		&library.CreatedAt,
		&library.Code,
		&library.Name,
		&library.Address,
		&library.ContactEmail,
		&library.ContactPhone,
		&library.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &library, nil
}

// GetLibraryByCode retrieves a library record by its unique branch code.
func (r *repository) GetLibraryByCode(code string) (*data.Library, error) {
	query := `
		SELECT id, created_at, code, name, address, contact_email, contact_phone, version
		FROM libraries
		WHERE code = $1`
	var library data.Library
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&library.ID,
		&library.CreatedAt,
		&library.Code,
		&library.Name,
		&library.Address,
		&library.ContactEmail,
		&library.ContactPhone,
		&library.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &library, nil
}

// UpdateLibrary updates a library record.
func (r *repository) UpdateLibrary(library *data.Library) error {
	query := `
		UPDATE libraries
		SET name = $1, address = $2, contact_email = $3, contact_phone = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`
	args := []interface{}{
		library.Name,
		library.Address,
		library.ContactEmail,
		library.ContactPhone,
		library.ID,
		library.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&library.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// DeleteLibrary deletes a library record. Deletion is blocked while any
// inventory exists for the branch, so catalog holdings have to be removed (or
// moved) first.
func (r *repository) DeleteLibrary(libraryID int64) error {
	if libraryID < 1 {
		return ErrRecordNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var inventories int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM inventories WHERE library_id = $1`, libraryID).Scan(&inventories)
	if err != nil {
		return err
	}
	if inventories > 0 {
		return ErrEditConflict
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM libraries WHERE id = $1`, libraryID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetAllLibraries retrieves a paginated list of library records, optionally
// filtered by a search term over code and name.
func (r *repository) GetAllLibraries(search string, filters data.Filters) ([]*data.Library, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, code, name, address, contact_email, contact_phone, version
		FROM libraries
		WHERE (
			to_tsvector('simple', code) ||
			to_tsvector('simple', name)
			@@ plainto_tsquery('simple', $1) OR $1 = ''
		)
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{search, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	libraries := []*data.Library{}
	for rows.Next() {
		var library data.Library
		err := rows.Scan(
			&totalRecords,
			&library.ID,
			&library.CreatedAt,
			&library.Code,
			&library.Name,
			&library.Address,
			&library.ContactEmail,
			&library.ContactPhone,
			&library.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		libraries = append(libraries, &library)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return libraries, metadata, nil
}
