package tenant

import (
	"context"
)

// Tipo próprio para a chave de contexto, evitando colisão com outros pacotes
type contextKey string

const tenantIDKey contextKey = "tenant_id"

// SetTenantIDContext propaga o tenant corrente num context.Context padrão,
// para código fora do ciclo de request do gin (repositórios, transporte NATS)
func SetTenantIDContext(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetTenantIDFromContext lê o tenant do contexto; vazio quando não definido
func GetTenantIDFromContext(ctx context.Context) string {
	if tenantID, ok := ctx.Value(tenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}

// GetTenantID lê o tenant corrente de um contexto do gin. Aceita a interface
// mínima em vez de *gin.Context para que controllers possam ser testados sem
// subir o router.
func GetTenantID(c interface{}) string {
	if gc, ok := c.(interface{ GetString(string) string }); ok {
		return gc.GetString("tenant_id")
	}

	if gc, ok := c.(interface {
		Get(string) (interface{}, bool)
	}); ok {
		if val, exists := gc.Get("tenant_id"); exists {
			if tenantID, ok := val.(string); ok {
				return tenantID
			}
		}
	}

	return ""
}
