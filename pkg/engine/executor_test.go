package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/logger"
	"github.com/matheusvb/atendai/pkg/schedule"
)

type staticTokenProvider struct{ token string }

func (p staticTokenProvider) GetValidAccessToken(context.Context, string) (string, error) {
	return p.token, nil
}

func TestExecuteLocalIntention(t *testing.T) {
	intn := &intention.Intention{
		ID:       "int-local",
		ToolName: "transfer_to_human",
		Type:     intention.TypeLocal,
		Fields:   []intention.Field{},
	}

	var received map[string]interface{}
	intn.BindLocalHandler(func(ctx context.Context, fields map[string]interface{}) (interface{}, error) {
		received = fields
		return map[string]interface{}{"transferred": true}, nil
	})

	e := NewExecutor(nil, nil, nil, logger.NewNopLogger())
	result, err := e.Execute(context.Background(), &ExecuteRequest{
		Intention: intn,
		Fields:    map[string]interface{}{"reason": " cobrança "},
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]interface{}{"transferred": true}, result.Data)

	// Campos chegam normalizados no handler
	assert.Equal(t, "cobrança", received["reason"])
}

func TestExecuteLocalIntentionWithoutHandler(t *testing.T) {
	intn := &intention.Intention{
		ID:       "int-local",
		ToolName: "transfer_to_human",
		Type:     intention.TypeLocal,
	}

	e := NewExecutor(nil, nil, nil, logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{Intention: intn, Fields: map[string]interface{}{}})

	assert.ErrorIs(t, err, intention.ErrHandlerMissing)
}

func TestExecuteWebhookWithPreconditionCapture(t *testing.T) {
	var paths []string
	var mainBody string
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/lookup":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id": "abc-1"}`)
		case "/items/abc-1":
			authHeader = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			mainBody = string(raw)
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"created": true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-wh",
		ToolName: "create_item",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/items/{{preconditions[0].resourceId}}",
		Headers:  map[string]string{"Authorization": "Bearer {{ACCESS_TOKEN}}"},
		Body:     `{"email": "{{email}}"}`,
		Preconditions: []intention.Precondition{
			{
				Name:          "lookup",
				URL:           server.URL + "/lookup",
				Method:        http.MethodGet,
				SuccessAction: "resourceId = preJson.id",
			},
		},
	}

	e := NewExecutor(server.Client(), staticTokenProvider{token: "tok-123"}, nil, logger.NewNopLogger())
	result, err := e.Execute(context.Background(), &ExecuteRequest{
		Intention: intn,
		Fields:    map[string]interface{}{"email": "ana@example.com"},
		AgentID:   "ag-1",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, map[string]interface{}{"created": true}, result.Data)

	// Precondições rodam antes da chamada principal, na ordem declarada
	assert.Equal(t, []string{"/lookup", "/items/abc-1"}, paths)
	assert.JSONEq(t, `{"email":"ana@example.com"}`, mainBody)
	assert.Equal(t, "Bearer tok-123", authHeader)
}

func TestExecutePreconditionFailureAborts(t *testing.T) {
	mainCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"status": "busy"}`)
		default:
			mainCalled = true
			io.WriteString(w, `{}`)
		}
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-wh",
		ToolName: "create_item",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/items",
		Preconditions: []intention.Precondition{
			{
				Name:             "check",
				URL:              server.URL + "/check",
				Method:           http.MethodGet,
				FailureCondition: "preJson.status == 'busy'",
				FailureMessage:   "O horário já está ocupado.",
			},
		},
	}

	e := NewExecutor(server.Client(), nil, nil, logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{Intention: intn, Fields: map[string]interface{}{}})

	require.Error(t, err)
	assert.Equal(t, "O horário já está ocupado.", err.Error())
	assert.False(t, mainCalled)
}

func TestExecutePreconditionChainStopsAtFirstFailure(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/one":
			io.WriteString(w, `{"ok": true}`)
		case "/two":
			io.WriteString(w, `{"status": "busy"}`)
		default:
			io.WriteString(w, `{}`)
		}
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-wh",
		ToolName: "create_item",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/items",
		Preconditions: []intention.Precondition{
			{Name: "one", URL: server.URL + "/one", Method: http.MethodGet},
			{
				Name:             "two",
				URL:              server.URL + "/two",
				Method:           http.MethodGet,
				FailureCondition: "preJson.status == 'busy'",
				FailureMessage:   "ocupado",
			},
			{Name: "three", URL: server.URL + "/three", Method: http.MethodGet},
		},
	}

	e := NewExecutor(server.Client(), nil, nil, logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{Intention: intn, Fields: map[string]interface{}{}})

	require.Error(t, err)
	assert.Equal(t, "ocupado", err.Error())

	// A falha da segunda precondição corta a cadeia: a terceira e a chamada
	// principal nunca acontecem
	assert.Equal(t, []string{"/one", "/two"}, paths)
}

func TestExecutePreconditionHTTPErrorAborts(t *testing.T) {
	mainCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"error": {"message": "credencial expirada"}}`)
		default:
			mainCalled = true
		}
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-wh",
		ToolName: "create_item",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/items",
		Preconditions: []intention.Precondition{
			{Name: "check", URL: server.URL + "/check", Method: http.MethodGet},
		},
	}

	e := NewExecutor(server.Client(), nil, nil, logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{Intention: intn, Fields: map[string]interface{}{}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credencial expirada")
	assert.False(t, mainCalled)
}

// A failureCondition roda sobre um placeholder vazio de preconditions: os
// resultados acumulados só ficam visíveis ao successAction. Uma condição que
// referencia capturas anteriores nunca dispara.
func TestExecuteFailureConditionSandboxHidesAccumulated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/first":
			io.WriteString(w, `{"flag": "on"}`)
		case "/second":
			io.WriteString(w, `{"ok": true}`)
		default:
			io.WriteString(w, `{"done": true}`)
		}
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-wh",
		ToolName: "create_item",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/main",
		Preconditions: []intention.Precondition{
			{
				Name:          "first",
				URL:           server.URL + "/first",
				Method:        http.MethodGet,
				SuccessAction: "flag = preJson.flag",
			},
			{
				Name:             "second",
				URL:              server.URL + "/second",
				Method:           http.MethodGet,
				FailureCondition: "preconditions[0].flag == 'on'",
				FailureMessage:   "não deveria disparar",
			},
		},
	}

	e := NewExecutor(server.Client(), nil, nil, logger.NewNopLogger())
	result, err := e.Execute(context.Background(), &ExecuteRequest{Intention: intn, Fields: map[string]interface{}{}})

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecuteScheduleMeetingRejectedByAvailability(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-sched",
		ToolName: "schedule_google_meeting",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/events",
	}

	availability := &agent.Availability{
		Enabled: true,
		Windows: []agent.AvailabilityWindow{
			// Somente segundas, 09:00 às 12:00
			{Weekday: 1, Start: "09:00", End: "12:00"},
		},
	}

	e := NewExecutor(server.Client(), nil, schedule.NewValidator(), logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{
		Intention: intn,
		Fields: map[string]interface{}{
			// 2026-03-10 é uma terça-feira
			"startDateTime": "2026-03-10T10:00:00",
			"endDateTime":   "2026-03-10T11:00:00",
		},
		Location:     time.UTC,
		Availability: availability,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.False(t, called)
}

func TestExecuteScheduleMeetingConflictFallsBackToSuggestions(t *testing.T) {
	slotsCalls := 0
	var slotsBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/events":
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, `{"error": {"message": "slot unavailable"}}`)
		case "/slots":
			slotsCalls++
			raw, _ := io.ReadAll(r.Body)
			slotsBody = string(raw)
			io.WriteString(w, `{"slots": ["2026-03-11T09:00:00"]}`)
		}
	}))
	defer server.Close()

	scheduleIntn := &intention.Intention{
		ID:       "int-sched",
		ToolName: "schedule_google_meeting",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/events",
	}
	suggestIntn := &intention.Intention{
		ID:       "int-suggest",
		ToolName: "suggest_available_google_meeting_slots",
		Type:     intention.TypeWebhook,
		Method:   http.MethodPost,
		URL:      server.URL + "/slots",
		Body:     `{"startSearch": "{{startSearch}}", "endSearch": "{{endSearch}}"}`,
	}

	e := NewExecutor(server.Client(), nil, schedule.NewValidator(), logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{
		Intention: scheduleIntn,
		Fields: map[string]interface{}{
			"startDateTime": "2026-03-10T10:00:00",
			"endDateTime":   "2026-03-10T11:00:00",
		},
		Location:   time.UTC,
		Intentions: []*intention.Intention{scheduleIntn, suggestIntn},
	})

	// O conflito vira a sugestão serializada, não um beco sem saída
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"success":true`)
	assert.Contains(t, err.Error(), "2026-03-11T09:00:00")

	// A sugestão roda uma única vez, com janela padrão de 7 dias a partir de
	// agora quando nenhum limite de busca foi informado
	assert.Equal(t, 1, slotsCalls)

	var window struct {
		StartSearch string `json:"startSearch"`
		EndSearch   string `json:"endSearch"`
	}
	require.NoError(t, json.Unmarshal([]byte(slotsBody), &window))

	start, pErr := time.Parse("2006-01-02T15:04:05Z", window.StartSearch)
	require.NoError(t, pErr)
	end, pErr := time.Parse("2006-01-02T15:04:05Z", window.EndSearch)
	require.NoError(t, pErr)

	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
	assert.WithinDuration(t, time.Now().UTC(), start, time.Minute)
}

func TestExecuteQueryParamsAndGetFields(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	intn := &intention.Intention{
		ID:       "int-get",
		ToolName: "list_items",
		Type:     intention.TypeWebhook,
		Method:   http.MethodGet,
		URL:      server.URL + "/items",
		QueryParams: []intention.QueryParam{
			{Name: "owner", Value: "{{email}}"},
		},
	}

	e := NewExecutor(server.Client(), nil, nil, logger.NewNopLogger())
	_, err := e.Execute(context.Background(), &ExecuteRequest{
		Intention: intn,
		Fields: map[string]interface{}{
			"email": "ana@example.com",
			"limit": "5",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, query["owner"])

	// Em GET, campos não declarados como query param são anexados à URL
	assert.Equal(t, []string{"5"}, query["limit"])
}

func TestNormalizeFields(t *testing.T) {
	normalized := NormalizeFields(map[string]interface{}{
		"name":    "  Ana  ",
		"active":  "true",
		"blocked": "false",
		"guests":  "ana@a.com, bia@b.com",
		"payload": `{"a": 1}`,
		"list":    `[1, 2]`,
		"number":  float64(7),
		"already": true,
	})

	assert.Equal(t, "Ana", normalized["name"])
	assert.Equal(t, true, normalized["active"])
	assert.Equal(t, false, normalized["blocked"])
	assert.Equal(t, []string{"ana@a.com", "bia@b.com"}, normalized["guests"])

	// Valores que já parecem JSON não viram lista
	assert.Equal(t, `{"a": 1}`, normalized["payload"])
	assert.Equal(t, `[1, 2]`, normalized["list"])

	assert.Equal(t, float64(7), normalized["number"])
	assert.Equal(t, true, normalized["already"])
}
