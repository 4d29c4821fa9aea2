package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/vendor-booking-backend/internal/db"
)

// Repository persists vendors, customers and customer addresses.
type Repository interface {
	// CreateVendor inserts the party and its vendor profile. An empty ID is generated.
	CreateVendor(ctx context.Context, v *Vendor) error
	// CreateCustomer inserts the party and any addresses it already carries.
	CreateCustomer(ctx context.Context, c *Customer) error

	GetParty(ctx context.Context, id string) (*Party, error)
	GetPartyByEmail(ctx context.Context, email string) (*Party, error)
	GetVendor(ctx context.Context, id string) (*Vendor, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListVendors(ctx context.Context, filter VendorFilter) ([]*Vendor, error)

	// UpdateVendor overwrites every mutable vendor field.
	UpdateVendor(ctx context.Context, v *Vendor) error

	// AddAddress stores addr for the customer. When addr is the customer's first
	// address or is flagged default, it becomes the only default and is placed first.
	AddAddress(ctx context.Context, customerID string, addr *Address) error
	RemoveAddress(ctx context.Context, customerID, addressID string) error
	// SetDefaultAddress marks one address default and clears the rest in one step.
	SetDefaultAddress(ctx context.Context, customerID, addressID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	tx   *db.TxManager
}

// NewPgxRepository creates a new Postgres-backed repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, tx: db.NewTxManager(pool)}
}

var partyColumns = []string{
	"p.id", "p.role", "p.name", "p.email", "p.phone", "p.password_hash",
	"p.home_latitude", "p.home_longitude", "p.home_address", "p.created_at",
}

var vendorColumns = append(append([]string{}, partyColumns...),
	"vp.service_postal_code", "vp.service_radius_km", "vp.categories", "vp.description",
	"vp.status_message", "vp.current_latitude", "vp.current_longitude", "vp.location_updated_at",
)

func partyScanTargets(p *Party) []any {
	return []any{
		&p.ID, &p.Role, &p.Name, &p.Email, &p.Phone, &p.PasswordHash,
		&p.Home.Latitude, &p.Home.Longitude, &p.Home.Address, &p.CreatedAt,
	}
}

func scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	var curLat, curLong *float64
	var updatedAt *time.Time
	targets := append(partyScanTargets(&v.Party),
		&v.ServiceArea.PostalCode, &v.ServiceArea.RadiusKm, &v.Categories, &v.Description,
		&v.StatusMessage, &curLat, &curLong, &updatedAt,
	)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	if curLat != nil && curLong != nil {
		v.CurrentLocation = &LiveLocation{Latitude: *curLat, Longitude: *curLong}
		if updatedAt != nil {
			v.CurrentLocation.LastUpdated = *updatedAt
		}
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}
	return &v, nil
}

// uniqueViolation returns the violated constraint name, or "" for any other error.
func uniqueViolation(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

func (r *pgxRepository) insertParty(ctx context.Context, p *Party) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	insert := psql.Insert("public.parties").
		Columns("role", "name", "email", "phone", "password_hash", "home_latitude", "home_longitude", "home_address").
		Values(p.Role, p.Name, p.Email, p.Phone, p.PasswordHash, p.Home.Latitude, p.Home.Longitude, p.Home.Address).
		Suffix("RETURNING id, created_at")
	if p.ID != "" {
		insert = psql.Insert("public.parties").
			Columns("id", "role", "name", "email", "phone", "password_hash", "home_latitude", "home_longitude", "home_address").
			Values(p.ID, p.Role, p.Name, p.Email, p.Phone, p.PasswordHash, p.Home.Latitude, p.Home.Longitude, p.Home.Address).
			Suffix("RETURNING id, created_at")
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert party query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		switch uniqueViolation(err) {
		case "":
		case "parties_pkey":
			return ErrPartyExists
		default:
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("insert party failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreateVendor(ctx context.Context, v *Vendor) error {
	v.Role = RoleVendor
	return r.tx.Do(ctx, func(ctx context.Context) error {
		if err := r.insertParty(ctx, &v.Party); err != nil {
			return err
		}

		var curLat, curLong *float64
		var updatedAt *time.Time
		if v.CurrentLocation != nil {
			curLat, curLong, updatedAt = &v.CurrentLocation.Latitude, &v.CurrentLocation.Longitude, &v.CurrentLocation.LastUpdated
		}

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Insert("public.vendor_profiles").
			Columns("party_id", "service_postal_code", "service_radius_km", "categories", "description",
				"status_message", "current_latitude", "current_longitude", "location_updated_at").
			Values(v.ID, v.ServiceArea.PostalCode, v.ServiceArea.RadiusKm, nonNilStrings(v.Categories), v.Description,
				v.StatusMessage, curLat, curLong, updatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert vendor profile query failed: %w", err)
		}
		if _, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert vendor profile failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) CreateCustomer(ctx context.Context, c *Customer) error {
	c.Role = RoleCustomer
	return r.tx.Do(ctx, func(ctx context.Context) error {
		if err := r.insertParty(ctx, &c.Party); err != nil {
			return err
		}
		for i := range c.Addresses {
			if err := r.insertAddress(ctx, c.ID, &c.Addresses[i], i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *pgxRepository) GetParty(ctx context.Context, id string) (*Party, error) {
	return r.getParty(ctx, squirrel.Eq{"p.id": id})
}

func (r *pgxRepository) GetPartyByEmail(ctx context.Context, email string) (*Party, error) {
	return r.getParty(ctx, squirrel.Eq{"p.email": email})
}

func (r *pgxRepository) getParty(ctx context.Context, where squirrel.Eq) (*Party, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(partyColumns...).
		From("public.parties p").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get party query failed: %w", err)
	}

	var p Party
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(partyScanTargets(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("get party failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) vendorSelect() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(vendorColumns...).
		From("public.parties p").
		Join("public.vendor_profiles vp ON vp.party_id = p.id").
		Where(squirrel.Eq{"p.role": RoleVendor})
}

func (r *pgxRepository) GetVendor(ctx context.Context, id string) (*Vendor, error) {
	query, args, err := r.vendorSelect().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get vendor query failed: %w", err)
	}

	v, err := scanVendor(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("get vendor failed: %w", err)
	}
	return v, nil
}

func (r *pgxRepository) ListVendors(ctx context.Context, filter VendorFilter) ([]*Vendor, error) {
	q := r.vendorSelect()
	if kw := strings.TrimSpace(filter.Query); kw != "" {
		pattern := "%" + kw + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"p.name": pattern},
			squirrel.ILike{"vp.description": pattern},
			squirrel.Expr("EXISTS (SELECT 1 FROM unnest(vp.categories) c WHERE c ILIKE ?)", pattern),
		})
	}
	if cat := strings.TrimSpace(filter.Category); cat != "" {
		q = q.Where(squirrel.Expr("EXISTS (SELECT 1 FROM unnest(vp.categories) c WHERE lower(c) = lower(?))", cat))
	}

	query, args, err := q.OrderBy("p.name", "p.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list vendors query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors failed: %w", err)
	}
	defer rows.Close()

	vendors := []*Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor failed: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors failed: %w", err)
	}
	return vendors, nil
}

func (r *pgxRepository) UpdateVendor(ctx context.Context, v *Vendor) error {
	return r.tx.Do(ctx, func(ctx context.Context) error {
		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Update("public.parties").
			Set("name", v.Name).
			Set("phone", v.Phone).
			Set("home_latitude", v.Home.Latitude).
			Set("home_longitude", v.Home.Longitude).
			Set("home_address", v.Home.Address).
			Where(squirrel.Eq{"id": v.ID, "role": RoleVendor}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update party query failed: %w", err)
		}
		ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update party failed: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrVendorNotFound
		}

		var curLat, curLong *float64
		var updatedAt *time.Time
		if v.CurrentLocation != nil {
			curLat, curLong, updatedAt = &v.CurrentLocation.Latitude, &v.CurrentLocation.Longitude, &v.CurrentLocation.LastUpdated
		}

		query, args, err = psql.Update("public.vendor_profiles").
			Set("service_postal_code", v.ServiceArea.PostalCode).
			Set("service_radius_km", v.ServiceArea.RadiusKm).
			Set("categories", nonNilStrings(v.Categories)).
			Set("description", v.Description).
			Set("status_message", v.StatusMessage).
			Set("current_latitude", curLat).
			Set("current_longitude", curLong).
			Set("location_updated_at", updatedAt).
			Where(squirrel.Eq{"party_id": v.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update vendor profile query failed: %w", err)
		}
		if _, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("update vendor profile failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	p, err := r.getParty(ctx, squirrel.Eq{"p.id": id, "p.role": RoleCustomer})
	if err != nil {
		if errors.Is(err, ErrPartyNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "title", "address", "postal_code", "is_default").
		From("public.customer_addresses").
		Where(squirrel.Eq{"customer_id": id}).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list addresses query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list addresses failed: %w", err)
	}
	defer rows.Close()

	c := &Customer{Party: *p, Addresses: []Address{}}
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.Title, &a.Address, &a.PostalCode, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address failed: %w", err)
		}
		c.Addresses = append(c.Addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) insertAddress(ctx context.Context, customerID string, a *Address, position int) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := []string{"customer_id", "title", "address", "postal_code", "is_default", "position"}
	vals := []any{customerID, a.Title, a.Address, a.PostalCode, a.IsDefault, position}
	if a.ID != "" {
		cols = append(cols, "id")
		vals = append(vals, a.ID)
	}

	query, args, err := psql.Insert("public.customer_addresses").
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert address query failed: %w", err)
	}
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&a.ID); err != nil {
		return fmt.Errorf("insert address failed: %w", err)
	}
	return nil
}

// lockCustomer serializes address edits for one customer inside the current transaction.
func (r *pgxRepository) lockCustomer(ctx context.Context, customerID string) error {
	var id string
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM public.parties WHERE id = $1 AND role = $2 FOR UPDATE`, customerID, RoleCustomer,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("lock customer failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) AddAddress(ctx context.Context, customerID string, addr *Address) error {
	return r.tx.Do(ctx, func(ctx context.Context) error {
		if err := r.lockCustomer(ctx, customerID); err != nil {
			return err
		}

		conn := db.Conn(ctx, r.pool)
		var count, minPos, maxPos int
		if err := conn.QueryRow(ctx,
			`SELECT count(*), COALESCE(min(position), 0), COALESCE(max(position), 0)
			 FROM public.customer_addresses WHERE customer_id = $1`, customerID,
		).Scan(&count, &minPos, &maxPos); err != nil {
			return fmt.Errorf("count addresses failed: %w", err)
		}

		position := maxPos + 1
		if count == 0 || addr.IsDefault {
			addr.IsDefault = true
			position = minPos - 1
			if _, err := conn.Exec(ctx,
				`UPDATE public.customer_addresses SET is_default = FALSE WHERE customer_id = $1 AND is_default`, customerID,
			); err != nil {
				return fmt.Errorf("clear default address failed: %w", err)
			}
		}

		return r.insertAddress(ctx, customerID, addr, position)
	})
}

func (r *pgxRepository) RemoveAddress(ctx context.Context, customerID, addressID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.customer_addresses").
		Where(squirrel.Eq{"id": addressID, "customer_id": customerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete address query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete address failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *pgxRepository) SetDefaultAddress(ctx context.Context, customerID, addressID string) error {
	return r.tx.Do(ctx, func(ctx context.Context) error {
		if err := r.lockCustomer(ctx, customerID); err != nil {
			return err
		}

		conn := db.Conn(ctx, r.pool)
		var exists bool
		if err := conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM public.customer_addresses WHERE id = $1 AND customer_id = $2)`,
			addressID, customerID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check address failed: %w", err)
		}
		if !exists {
			return ErrAddressNotFound
		}

		// Clear first so the partial unique index never sees two defaults.
		if _, err := conn.Exec(ctx,
			`UPDATE public.customer_addresses SET is_default = FALSE WHERE customer_id = $1 AND is_default AND id <> $2`,
			customerID, addressID,
		); err != nil {
			return fmt.Errorf("clear default address failed: %w", err)
		}
		if _, err := conn.Exec(ctx,
			`UPDATE public.customer_addresses SET is_default = TRUE WHERE id = $1`, addressID,
		); err != nil {
			return fmt.Errorf("set default address failed: %w", err)
		}
		return nil
	})
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
