package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/athenaeum/data"
	"github.com/lib/pq"
)

type titles interface {
	CreateTitle(title *data.Title) error
	GetTitle(titleID int64) (*data.Title, error)
	UpdateTitle(title *data.Title) error
	DeleteTitle(titleID int64) error
	GetAllTitles(search string, filters data.Filters) ([]*data.Title, data.Metadata, error)
}

// CreateTitle creates a new bibliographic title record.
func (r *repository) CreateTitle(title *data.Title) error {
	query := `
		INSERT INTO titles (name, author, publisher, language, year, isbn_10, isbn_13, description, cover_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version`
	args := []interface{}{
		title.Name,
		pq.Array(title.Author),
		title.Publisher,
		title.Language,
		title.Year,
		title.Isbn10,
		title.Isbn13,
		title.Description,
		title.CoverURL,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&title.ID,
		&title.CreatedAt,
		&title.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "titles_isbn_10_uniq"`,
			err.Error() == `pq: duplicate key value violates unique constraint "titles_isbn_13_uniq"`:
			return ErrDuplicateRecord
		default:
			return err
		}
	}
	return nil
}

// GetTitle retrieves a title record by its ID.
func (r *repository) GetTitle(titleID int64) (*data.Title, error) {
	if titleID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, name, author, publisher, language, year, isbn_10, isbn_13, description, cover_url, version
		FROM titles
		WHERE id = $1`
	var title data.Title
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, titleID).Scan(
		&title.ID,
		&title.CreatedAt,
		&title.Name,
		pq.Array(&title.Author),
		&title.Publisher,
		&title.Language,
		&title.Year,
		&title.Isbn10,
		&title.Isbn13,
		&title.Description,
		&title.CoverURL,
		&title.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &title, nil
}

// UpdateTitle updates a title record.
func (r *repository) UpdateTitle(title *data.Title) error {
	query := `
		UPDATE titles
		SET name = $1, author = $2, publisher = $3, language = $4, year = $5, isbn_10 = $6, isbn_13 = $7, description = $8, cover_url = $9, version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version`
	args := []interface{}{
		title.Name,
		pq.Array(title.Author),
		title.Publisher,
		title.Language,
		title.Year,
		title.Isbn10,
		title.Isbn13,
		title.Description,
		title.CoverURL,
		title.ID,
		title.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&title.Version)
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

// DeleteTitle deletes a title record. Deletion is blocked while any copy of
// the title is out on an active loan; otherwise inventories, copies, requests
// and closed records cascade via foreign keys.
func (r *repository) DeleteTitle(titleID int64) error {
	if titleID < 1 {
		return ErrRecordNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var activeLoans int64
	query := `
		SELECT count(*)
		FROM borrow_records
		WHERE title_id = $1 AND status = ANY($2)`
	err := r.db.QueryRowContext(ctx, query, titleID, pq.Array([]string{data.RecordStatusBorrowed, data.RecordStatusOverdue})).Scan(&activeLoans)
	if err != nil {
		return err
	}
	if activeLoans > 0 {
		return ErrEditConflict
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, titleID)
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

// GetAllTitles retrieves a paginated list of title records, optionally
// filtered by a search term over name, ISBNs and publisher.
func (r *repository) GetAllTitles(search string, filters data.Filters) ([]*data.Title, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, name, author, publisher, language, year, isbn_10, isbn_13, description, cover_url, version
		FROM titles
		WHERE (
			to_tsvector('simple', name) ||
			to_tsvector('simple', isbn_10) ||
			to_tsvector('simple', isbn_13) ||
			to_tsvector('simple', publisher)
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
	titles := []*data.Title{}
	for rows.Next() {
		var title data.Title
		err := rows.Scan(
			&totalRecords,
			&title.ID,
			&title.CreatedAt,
			&title.Name,
			pq.Array(&title.Author),
			&title.Publisher,
			&title.Language,
			&title.Year,
			&title.Isbn10,
			&title.Isbn13,
			&title.Description,
			&title.CoverURL,
			&title.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		titles = append(titles, &title)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return titles, metadata, nil
}
