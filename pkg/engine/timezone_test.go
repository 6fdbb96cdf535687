package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveZoneLabel(t *testing.T) {
	assert.Equal(t, "America/Sao_Paulo", ResolveZoneLabel("Brasília (GMT-3)"))
	assert.Equal(t, "America/Manaus", ResolveZoneLabel("Manaus (GMT-4)"))
	assert.Equal(t, "Europe/Lisbon", ResolveZoneLabel("Lisboa (GMT+0)"))

	// Nomes IANA diretos são aceitos
	assert.Equal(t, "America/Recife", ResolveZoneLabel("America/Recife"))

	// Rótulos desconhecidos caem no padrão
	assert.Equal(t, "America/Sao_Paulo", ResolveZoneLabel("Atlântida (GMT-10)"))
	assert.Equal(t, "America/Sao_Paulo", ResolveZoneLabel(""))
}

func TestNormalizeDateFields(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	fields := map[string]interface{}{
		"startDateTime": "2026-03-10T14:00:00",
		"endDateTime":   "2026-03-10T15:00",
		"timeMin":       "2026-03-10T08:00:00",
		"timeMax":       "2026-03-10 18:00",
		"summary":       "Reunião",
	}

	NormalizeDateFields(fields, loc)

	// Instantes viajam em UTC (São Paulo é GMT-3)
	assert.Equal(t, "2026-03-10T17:00:00Z", fields["startDateTime"])
	assert.Equal(t, "2026-03-10T18:00:00Z", fields["endDateTime"])

	// Limites de free-busy preservam o horário local com offset
	assert.Equal(t, "2026-03-10T08:00:00-03:00", fields["timeMin"])
	assert.Equal(t, "2026-03-10T18:00:00-03:00", fields["timeMax"])

	assert.Equal(t, "America/Sao_Paulo", fields["timeZone"])
	assert.Equal(t, "Reunião", fields["summary"])
}

func TestNormalizeDateFieldsExplicitOffset(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// Offset explícito é respeitado, não reinterpretado
	fields := map[string]interface{}{"startDateTime": "2026-03-10T14:00:00-05:00"}
	NormalizeDateFields(fields, loc)

	assert.Equal(t, "2026-03-10T19:00:00Z", fields["startDateTime"])
}

func TestNormalizeDateFieldsUnparseable(t *testing.T) {
	fields := map[string]interface{}{"startDateTime": "amanhã de manhã"}
	NormalizeDateFields(fields, time.UTC)

	// Valores ilegíveis passam intactos
	assert.Equal(t, "amanhã de manhã", fields["startDateTime"])
	assert.Equal(t, "UTC", fields["timeZone"])
}
