package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusvb/atendai/internal/domain/agent"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestValidateDisabledAcceptsAnything(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	start := time.Date(2026, 3, 8, 3, 0, 0, 0, loc) // domingo de madrugada
	end := start.Add(5 * time.Minute)

	assert.Empty(t, v.Validate(start, end, nil, loc))
	assert.Empty(t, v.Validate(start, end, &agent.Availability{Enabled: false}, loc))
}

func TestValidateEndBeforeStart(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	start := time.Date(2026, 3, 9, 10, 0, 0, 0, loc)

	msg := v.Validate(start, start, &agent.Availability{Enabled: true}, loc)
	assert.Contains(t, msg, "unavailable")
	assert.Contains(t, msg, "término")

	msg = v.Validate(start, start.Add(-time.Hour), &agent.Availability{Enabled: true}, loc)
	assert.Contains(t, msg, "unavailable")
}

func TestValidateMinDuration(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{Enabled: true, MinDurationMinutes: 30}
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, loc)

	msg := v.Validate(start, start.Add(15*time.Minute), availability, loc)
	assert.Contains(t, msg, "unavailable")
	assert.Contains(t, msg, "30 minutos")

	assert.Empty(t, v.Validate(start, start.Add(30*time.Minute), availability, loc))
}

func TestValidateNoWindowsAcceptsAnyTime(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{Enabled: true}
	start := time.Date(2026, 3, 8, 23, 0, 0, 0, loc) // domingo à noite

	assert.Empty(t, v.Validate(start, start.Add(time.Hour), availability, loc))
}

func TestValidateCrossMidnightRejected(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{
		Enabled: true,
		Windows: []agent.AvailabilityWindow{
			{Weekday: 1, Start: "09:00", End: "18:00"},
		},
	}

	start := time.Date(2026, 3, 9, 23, 30, 0, 0, loc) // segunda-feira
	end := start.Add(time.Hour)                       // já é terça

	msg := v.Validate(start, end, availability, loc)
	assert.Contains(t, msg, "unavailable")
	assert.Contains(t, msg, "mesmo dia")
}

func TestValidateInsideWindow(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{
		Enabled: true,
		Windows: []agent.AvailabilityWindow{
			{Weekday: 1, Start: "09:00", End: "12:00"},
			{Weekday: 1, Start: "14:00", End: "18:00"},
		},
	}

	// 2026-03-09 é uma segunda-feira
	morning := time.Date(2026, 3, 9, 9, 0, 0, 0, loc)
	assert.Empty(t, v.Validate(morning, morning.Add(time.Hour), availability, loc))

	afternoon := time.Date(2026, 3, 9, 17, 0, 0, 0, loc)
	assert.Empty(t, v.Validate(afternoon, afternoon.Add(time.Hour), availability, loc))
}

func TestValidateOutsideWindow(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{
		Enabled: true,
		Windows: []agent.AvailabilityWindow{
			{Weekday: 1, Start: "09:00", End: "12:00"},
		},
	}

	// Começa dentro da janela mas termina depois dela
	late := time.Date(2026, 3, 9, 11, 30, 0, 0, loc)
	msg := v.Validate(late, late.Add(time.Hour), availability, loc)
	assert.Contains(t, msg, "unavailable")
	assert.Contains(t, msg, "segunda-feira")

	// Dia sem janela configurada
	tuesday := time.Date(2026, 3, 10, 10, 0, 0, 0, loc)
	msg = v.Validate(tuesday, tuesday.Add(time.Hour), availability, loc)
	assert.Contains(t, msg, "unavailable")
	assert.Contains(t, msg, "terça-feira")
}

func TestValidateConvertsToLocalZone(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{
		Enabled: true,
		Windows: []agent.AvailabilityWindow{
			{Weekday: 1, Start: "09:00", End: "12:00"},
		},
	}

	// 13:00 UTC = 10:00 em São Paulo (GMT-3), dentro da janela
	start := time.Date(2026, 3, 9, 13, 0, 0, 0, time.UTC)
	assert.Empty(t, v.Validate(start, start.Add(time.Hour), availability, loc))
}

func TestValidateMalformedWindowIsSkipped(t *testing.T) {
	v := NewValidator()
	loc := saoPaulo(t)

	availability := &agent.Availability{
		Enabled: true,
		Windows: []agent.AvailabilityWindow{
			{Weekday: 1, Start: "quebrado", End: "12:00"},
		},
	}

	start := time.Date(2026, 3, 9, 10, 0, 0, 0, loc)
	msg := v.Validate(start, start.Add(time.Hour), availability, loc)
	assert.Contains(t, msg, "unavailable")
}
