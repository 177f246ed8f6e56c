package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hostaway_sync/internal/domain"
)

const errDuplicateEntry = 1062

func valJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// mapWriteErr turns a duplicate entry on the slug key into domain.ErrSlugConflict.
func mapWriteErr(err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDuplicateEntry && strings.Contains(me.Message, "slug") {
		return fmt.Errorf("%w: %s", domain.ErrSlugConflict, me.Message)
	}
	return err
}

func (r *Repo) InsertProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, insertPropertySQL,
		p.ListingID,
		p.Slug,
		p.Title,
		p.Description,
		p.City,
		p.Country,
		p.Address,
		p.Latitude,
		p.Longitude,
		p.Bedrooms,
		p.Bathrooms,
		p.Guests,
		p.BasePrice,
		valJSON(p.Images),
		valJSON(p.Amenities),
		p.PropertyType,
		p.CheckInTime,
		p.CheckOutTime,
		p.HouseRules,
		p.CreatedAt,
		p.LastSynced,
	)
	return mapWriteErr(err)
}

func (r *Repo) UpdateProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, updatePropertySQL,
		p.Slug,
		p.Title,
		p.Description,
		p.City,
		p.Country,
		p.Address,
		p.Latitude,
		p.Longitude,
		p.Bedrooms,
		p.Bathrooms,
		p.Guests,
		p.BasePrice,
		valJSON(p.Images),
		valJSON(p.Amenities),
		p.PropertyType,
		p.CheckInTime,
		p.CheckOutTime,
		p.HouseRules,
		p.LastSynced,
		p.ListingID,
	)
	return mapWriteErr(err)
}

type scanner interface{ Scan(dest ...any) error }

func scanProperty(row scanner) (domain.Property, error) {
	var p domain.Property
	var desc, addr, rules sql.NullString
	var imagesJSON, amenitiesJSON []byte
	if err := row.Scan(
		&p.ListingID,
		&p.Slug,
		&p.Title,
		&desc,
		&p.City,
		&p.Country,
		&addr,
		&p.Latitude,
		&p.Longitude,
		&p.Bedrooms,
		&p.Bathrooms,
		&p.Guests,
		&p.BasePrice,
		&imagesJSON,
		&amenitiesJSON,
		&p.PropertyType,
		&p.CheckInTime,
		&p.CheckOutTime,
		&rules,
		&p.CreatedAt,
		&p.LastSynced,
	); err != nil {
		return domain.Property{}, err
	}
	p.Description, p.Address, p.HouseRules = desc.String, addr.String, rules.String
	p.Images, p.Amenities = []string{}, []string{}
	_ = json.Unmarshal(imagesJSON, &p.Images)
	_ = json.Unmarshal(amenitiesJSON, &p.Amenities)
	return p, nil
}

func (r *Repo) getOne(ctx context.Context, q string, arg any) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) FindByListingID(ctx context.Context, listingID string) (domain.Property, error) {
	return r.getOne(ctx, findByListingIDSQL, listingID)
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (domain.Property, error) {
	return r.getOne(ctx, getBySlugSQL, slug)
}

func (r *Repo) SlugExists(ctx context.Context, slug, excludingListingID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, slugExistsSQL, slug, excludingListingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repo) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Property, error) {
	var where []string
	var args []any
	if q.Location != "" {
		like := "%" + escapeLike(q.Location) + "%"
		where = append(where, "(city LIKE ? OR country LIKE ?)")
		args = append(args, like, like)
	}
	if g := q.TotalGuests(); g > 0 {
		where = append(where, "guests >= ?")
		args = append(args, g)
	}
	for _, a := range q.Amenities {
		where = append(where, "JSON_CONTAINS(amenities, JSON_QUOTE(?))")
		args = append(args, a)
	}

	sqlStr := selectPropertySQL
	if len(where) > 0 {
		sqlStr += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	sqlStr += "ORDER BY title ASC, listing_id ASC"

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountProperties(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countPropertiesSQL).Scan(&n)
	return n, err
}

func (r *Repo) ListCities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listCitiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertAmenity(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, upsertAmenitySQL, id, name)
	return err
}

func (r *Repo) ListAmenities(ctx context.Context, activeOnly bool) ([]domain.Amenity, error) {
	q := listAmenitiesSQL
	if activeOnly {
		q += " WHERE is_active = 1"
	}
	q += " ORDER BY amenity_name"

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Amenity{}
	for rows.Next() {
		var a domain.Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.IsActive); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetActiveAmenities deactivates the whole catalog and re-activates ids, atomically.
func (r *Repo) SetActiveAmenities(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deactivateAmenitiesSQL); err != nil {
		return err
	}
	if len(ids) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}
		if _, err := tx.ExecContext(ctx, "UPDATE amenities SET is_active = 1 WHERE amenity_id IN ("+ph+")", args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
