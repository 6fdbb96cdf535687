package engine

import (
	"time"
)

// zoneLabels mapeia os rótulos de fuso exibidos na configuração do tenant
// para zonas IANA. A resolução é uma função pura sobre esta tabela.
var zoneLabels = map[string]string{
	"Brasília (GMT-3)":            "America/Sao_Paulo",
	"Manaus (GMT-4)":              "America/Manaus",
	"Rio Branco (GMT-5)":          "America/Rio_Branco",
	"Fernando de Noronha (GMT-2)": "America/Noronha",
	"Lisboa (GMT+0)":              "Europe/Lisbon",
	"Luanda (GMT+1)":              "Africa/Luanda",
	"Maputo (GMT+2)":              "Africa/Maputo",
	"Buenos Aires (GMT-3)":        "America/Argentina/Buenos_Aires",
	"Cidade do México (GMT-6)":    "America/Mexico_City",
	"Nova Iorque (GMT-5)":         "America/New_York",
	"Londres (GMT+0)":             "Europe/London",
	"Madri (GMT+1)":               "Europe/Madrid",
}

const defaultZone = "America/Sao_Paulo"

// ResolveZoneLabel converte um rótulo de fuso do tenant para o nome da zona
// IANA correspondente. Rótulos desconhecidos caem no fuso padrão.
func ResolveZoneLabel(label string) string {
	if zone, ok := zoneLabels[label]; ok {
		return zone
	}
	// Aceitar nomes IANA diretos na configuração
	if _, err := time.LoadLocation(label); err == nil && label != "" {
		return label
	}
	return defaultZone
}

// LoadZoneLabel resolve o rótulo e carrega a *time.Location correspondente
func LoadZoneLabel(label string) *time.Location {
	loc, err := time.LoadLocation(ResolveZoneLabel(label))
	if err != nil {
		return time.UTC
	}
	return loc
}

// Campos que recebem instantes UTC com precisão de segundos
var utcInstantFields = []string{"startDateTime", "endDateTime", "startSearch", "endSearch"}

// Campos que preservam o horário local com sufixo de offset numérico.
// APIs de free-busy esperam limites com offset local, enquanto início e fim
// de eventos viajam como instantes UTC.
var offsetFields = []string{"timeMin", "timeMax"}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeDateFields normaliza os campos de data/hora conhecidos no mapa de
// campos, interpretando valores sem offset no fuso resolvido do agente, e
// define fields["timeZone"] com o nome da zona IANA.
func NormalizeDateFields(fields map[string]interface{}, loc *time.Location) {
	for _, name := range utcInstantFields {
		if raw, ok := fields[name].(string); ok && raw != "" {
			if t, ok := parseInLocation(raw, loc); ok {
				fields[name] = t.UTC().Format("2006-01-02T15:04:05Z")
			}
		}
	}

	for _, name := range offsetFields {
		if raw, ok := fields[name].(string); ok && raw != "" {
			if t, ok := parseInLocation(raw, loc); ok {
				fields[name] = t.In(loc).Format("2006-01-02T15:04:05-07:00")
			}
		}
	}

	fields["timeZone"] = loc.String()
}

// parseInLocation tenta interpretar um valor de data/hora. Valores com offset
// explícito são respeitados; valores sem offset são lidos no fuso informado.
func parseInLocation(value string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	for _, layout := range dateTimeLayouts[1:] {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
