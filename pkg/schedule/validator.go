// Package schedule valida janelas de reunião contra as regras de
// disponibilidade configuradas no agente.
package schedule

import (
	"fmt"
	"time"

	"github.com/matheusvb/atendai/internal/domain/agent"
)

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// Validator aplica as regras de disponibilidade antes de qualquer chamada ao
// provedor de agenda. Retorna "" quando a janela proposta é válida; caso
// contrário, uma mensagem contendo "unavailable" mais a explicação legível
// que o compositor pode reaproveitar.
type Validator struct{}

// NewValidator cria um validador de disponibilidade
func NewValidator() *Validator {
	return &Validator{}
}

// Validate verifica ordem, duração mínima e janelas semanais
func (v *Validator) Validate(start, end time.Time, availability *agent.Availability, loc *time.Location) string {
	if availability == nil || !availability.Enabled {
		return ""
	}

	localStart := start.In(loc)
	localEnd := end.In(loc)

	if !localEnd.After(localStart) {
		return "unavailable: o horário de término precisa ser depois do início"
	}

	if availability.MinDurationMinutes > 0 {
		minDur := time.Duration(availability.MinDurationMinutes) * time.Minute
		if localEnd.Sub(localStart) < minDur {
			return fmt.Sprintf("unavailable: a reunião precisa durar pelo menos %d minutos",
				availability.MinDurationMinutes)
		}
	}

	if len(availability.Windows) == 0 {
		return ""
	}

	// Reuniões não podem atravessar a meia-noite local
	if localStart.Year() != localEnd.Year() || localStart.YearDay() != localEnd.YearDay() {
		return "unavailable: a reunião precisa começar e terminar no mesmo dia"
	}

	for _, w := range availability.Windows {
		if w.Weekday != int(localStart.Weekday()) {
			continue
		}
		winStart, err1 := clockOn(localStart, w.Start, loc)
		winEnd, err2 := clockOn(localStart, w.End, loc)
		if err1 != nil || err2 != nil {
			continue
		}
		if !localStart.Before(winStart) && !localEnd.After(winEnd) {
			return ""
		}
	}

	return fmt.Sprintf("unavailable: não há atendimento em %s nesse horário",
		weekdayNames[localStart.Weekday()])
}

// clockOn projeta um horário "15:04" no dia da data de referência
func clockOn(ref time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
