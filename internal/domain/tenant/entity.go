package tenant

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("nome não pode ser vazio")
	ErrEmptyDocument   = errors.New("documento não pode ser vazio")
	ErrInvalidTenantID = errors.New("ID de tenant inválido")
	ErrTenantNotActive = errors.New("tenant não está ativo")
)

// Status representa o estado do tenant
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

// Tenant representa uma empresa cliente da plataforma
type Tenant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"` // CNPJ da empresa
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Status   Status `json:"status"`

	// Tipo de plano contratado; controla limites de agentes e intenções
	PlanType string `json:"plan_type"`

	// Número de WhatsApp conectado à plataforma
	WhatsAppNumber string `json:"whatsapp_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTenant cria um novo tenant
func NewTenant(name, document, email, phone, planType string) (*Tenant, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	if document == "" {
		return nil, ErrEmptyDocument
	}

	now := time.Now()
	return &Tenant{
		ID:        uuid.New().String(),
		Name:      name,
		Document:  document,
		Email:     email,
		Phone:     phone,
		Status:    StatusActive,
		PlanType:  planType,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive verifica se o tenant está ativo
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// Activate ativa o tenant
func (t *Tenant) Activate() {
	t.Status = StatusActive
	t.UpdatedAt = time.Now()
}

// Deactivate desativa o tenant
func (t *Tenant) Deactivate() {
	t.Status = StatusInactive
	t.UpdatedAt = time.Now()
}

// Block bloqueia o tenant
func (t *Tenant) Block() {
	t.Status = StatusBlocked
	t.UpdatedAt = time.Now()
}

// ChangePlan altera o plano do tenant
func (t *Tenant) ChangePlan(planType string) {
	t.PlanType = planType
	t.UpdatedAt = time.Now()
}

// Update atualiza os dados do tenant
func (t *Tenant) Update(name, email, phone string) error {
	if name == "" {
		return ErrEmptyName
	}

	t.Name = name
	t.Email = email
	t.Phone = phone
	t.UpdatedAt = time.Now()
	return nil
}
