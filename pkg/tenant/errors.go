package tenant

import "errors"

// Erros sentinela da resolução de tenant, usados pelo middleware e pelo
// endpoint de mensagens recebidas
var (
	// ErrTenantNotSpecified indica requisição sem o header de tenant
	ErrTenantNotSpecified = errors.New("tenant ID não especificado")

	// ErrTenantNotFound indica tenant inexistente na base
	ErrTenantNotFound = errors.New("tenant não encontrado")

	// ErrTenantNotActive indica tenant desativado ou suspenso
	ErrTenantNotActive = errors.New("tenant não está ativo")
)
