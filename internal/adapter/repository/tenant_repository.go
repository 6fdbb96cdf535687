package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusvb/atendai/internal/domain/tenant"
)

// Erros específicos do repositório
var (
	ErrTenantNotFound          = errors.New("tenant não encontrado")
	ErrTenantDuplicateDocument = errors.New("tenant com mesmo documento já existe")
	ErrTenantDatabaseError     = errors.New("erro de banco de dados")
)

// TenantRepository implementa a interface tenant.Repository
type TenantRepository struct {
	db *pgxpool.Pool
}

// NewTenantRepository cria uma nova instância de TenantRepository
func NewTenantRepository(db *pgxpool.Pool) tenant.Repository {
	return &TenantRepository{
		db: db,
	}
}

// Create implementa tenant.Repository.Create
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	exists, err := r.ExistsByDocument(ctx, t.Document)
	if err != nil {
		return fmt.Errorf("erro ao verificar existência do tenant: %w", err)
	}
	if exists {
		return ErrTenantDuplicateDocument
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO tenants (
			id, name, document, email, phone, status, plan_type,
			whatsapp_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Name, t.Document, t.Email, t.Phone, t.Status, t.PlanType,
		t.WhatsAppNumber, t.CreatedAt, t.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrTenantDuplicateDocument
		}
		return fmt.Errorf("erro ao criar tenant: %w", err)
	}

	return nil
}

// FindByID implementa tenant.Repository.FindByID
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, document, email, phone, status, plan_type,
			whatsapp_number, created_at, updated_at
		FROM tenants WHERE id = $1`,
		id)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("erro ao buscar tenant: %w", err)
	}

	return t, nil
}

// FindByDocument implementa tenant.Repository.FindByDocument
func (r *TenantRepository) FindByDocument(ctx context.Context, document string) (*tenant.Tenant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, document, email, phone, status, plan_type,
			whatsapp_number, created_at, updated_at
		FROM tenants WHERE document = $1`,
		document)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("erro ao buscar tenant por documento: %w", err)
	}

	return t, nil
}

// List implementa tenant.Repository.List
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, document, email, phone, status, plan_type,
			whatsapp_number, created_at, updated_at
		FROM tenants
		ORDER BY created_at
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	return tenants, nil
}

// Update implementa tenant.Repository.Update
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	t.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx,
		`UPDATE tenants SET
			name = $2, email = $3, phone = $4, plan_type = $5,
			whatsapp_number = $6, updated_at = $7
		WHERE id = $1`,
		t.ID, t.Name, t.Email, t.Phone, t.PlanType, t.WhatsAppNumber, t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("erro ao atualizar tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTenantNotFound
	}

	return nil
}

// Delete implementa tenant.Repository.Delete
func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao remover tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTenantNotFound
	}

	return nil
}

// UpdateStatus implementa tenant.Repository.UpdateStatus
func (r *TenantRepository) UpdateStatus(ctx context.Context, id string, status tenant.Status) error {
	result, err := r.db.Exec(ctx,
		`UPDATE tenants SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("erro ao atualizar status do tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTenantNotFound
	}

	return nil
}

// Count implementa tenant.Repository.Count
func (r *TenantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar tenants: %w", err)
	}

	return count, nil
}

// Exists implementa tenant.Repository.Exists
func (r *TenantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("erro ao verificar tenant: %w", err)
	}

	return exists, nil
}

// ExistsByDocument implementa tenant.Repository.ExistsByDocument
func (r *TenantRepository) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE document = $1)`, document).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("erro ao verificar tenant por documento: %w", err)
	}

	return exists, nil
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Document, &t.Email, &t.Phone, &t.Status,
		&t.PlanType, &t.WhatsAppNumber, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
