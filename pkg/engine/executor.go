package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/internal/domain/intention"
	"github.com/matheusvb/atendai/pkg/logger"
)

const (
	// Intenção de agendamento que passa pela validação de disponibilidade
	scheduleMeetingTool = "schedule_google_meeting"

	// Intenção de sugestão de horários usada como fallback de conflito
	suggestSlotsTool = "suggest_available_google_meeting_slots"

	// Placeholder dinâmico substituído pelo access token nos headers
	accessTokenPlaceholder = "{{ACCESS_TOKEN}}"

	// Janela padrão de busca de horários no fallback de conflito
	defaultSearchWindow = 7 * 24 * time.Hour
)

// TokenProvider fornece credenciais bearer para as chamadas configuradas
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, agentID string) (string, error)
}

// ScheduleValidator valida uma janela de reunião proposta contra as regras
// de disponibilidade do tenant. Retorna "" quando a janela é válida.
type ScheduleValidator interface {
	Validate(start, end time.Time, availability *agent.Availability, loc *time.Location) string
}

// Executor executa uma intenção: precondições sequenciais com corte na
// primeira falha, chamada principal templatada ou handler local.
type Executor struct {
	httpClient *http.Client
	tokens     TokenProvider
	scheduler  ScheduleValidator
	logger     logger.Logger
}

// NewExecutor cria um executor de intenções. O http.Client injetado deve
// carregar timeout próprio; nenhuma chamada fica sem limite.
func NewExecutor(client *http.Client, tokens TokenProvider, scheduler ScheduleValidator, log logger.Logger) *Executor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{
		httpClient: client,
		tokens:     tokens,
		scheduler:  scheduler,
		logger:     log,
	}
}

// ExecuteRequest agrupa as entradas de uma execução
type ExecuteRequest struct {
	Intention    *intention.Intention
	Fields       map[string]interface{}
	AgentID      string
	Location     *time.Location
	Intentions   []*intention.Intention // usadas pelo fallback de sugestão de horários
	Availability *agent.Availability
}

// Execute executa a intenção e retorna o resultado normalizado, ou erro.
func (e *Executor) Execute(ctx context.Context, req *ExecuteRequest) (*ExecutionResult, error) {
	if req.Location == nil {
		req.Location = time.UTC
	}

	fields := NormalizeFields(req.Fields)

	if strings.TrimSpace(req.Intention.ToolName) == scheduleMeetingTool {
		return e.executeScheduleMeeting(ctx, req, fields)
	}

	return e.execute(ctx, req.Intention, fields, req.AgentID, req.Location)
}

// executeScheduleMeeting valida a janela proposta antes da execução e, em
// conflito de agenda, redireciona para a intenção de sugestão de horários.
func (e *Executor) executeScheduleMeeting(ctx context.Context, req *ExecuteRequest, fields map[string]interface{}) (*ExecutionResult, error) {
	if e.scheduler != nil && req.Availability != nil && req.Availability.Enabled {
		start, startOK := parseFieldTime(fields, "startDateTime", req.Location)
		end, endOK := parseFieldTime(fields, "endDateTime", req.Location)
		if startOK && endOK {
			if msg := e.scheduler.Validate(start, end, req.Availability, req.Location); msg != "" {
				e.logger.Info("Janela de reunião rejeitada pela disponibilidade", "message", msg)
				return nil, errors.New(msg)
			}
		}
	}

	result, err := e.execute(ctx, req.Intention, fields, req.AgentID, req.Location)
	if err == nil {
		return result, nil
	}

	// Conflito de agenda vira sugestão de horários alternativos em vez de
	// um beco sem saída
	if !strings.Contains(err.Error(), "unavailable") {
		return nil, err
	}

	suggest := findByToolName(req.Intentions, suggestSlotsTool)
	if suggest == nil {
		e.logger.Warn("Conflito de agenda sem intenção de sugestão configurada")
		return nil, err
	}

	suggestFields := suggestionFields(fields, req.Location)
	suggestion, sErr := e.execute(ctx, suggest, suggestFields, req.AgentID, req.Location)
	if sErr != nil {
		e.logger.Error("Fallback de sugestão de horários falhou", "error", sErr)
		return nil, err
	}

	serialized, mErr := json.Marshal(suggestion)
	if mErr != nil {
		return nil, err
	}

	return nil, errors.New(string(serialized))
}

// suggestionFields monta os campos da busca de horários: reaproveita os
// limites informados ou abre uma janela padrão de 7 dias a partir de agora
// no fuso do tenant.
func suggestionFields(fields map[string]interface{}, loc *time.Location) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	_, hasStart := parseFieldTime(fields, "startSearch", loc)
	_, hasEnd := parseFieldTime(fields, "endSearch", loc)
	if !hasStart || !hasEnd {
		now := time.Now().In(loc)
		out["startSearch"] = now.Format("2006-01-02T15:04:05")
		out["endSearch"] = now.Add(defaultSearchWindow).Format("2006-01-02T15:04:05")
	}

	return out
}

// execute executa o branch LOCAL ou WEBHOOK da intenção.
func (e *Executor) execute(ctx context.Context, intn *intention.Intention, fields map[string]interface{}, agentID string, loc *time.Location) (*ExecutionResult, error) {
	if intn.Type == intention.TypeLocal {
		handler := intn.LocalHandler()
		if handler == nil {
			return nil, fmt.Errorf("%w: %s", intention.ErrHandlerMissing, intn.ToolName)
		}
		data, err := handler(ctx, fields)
		if err != nil {
			return nil, err
		}
		return &ExecutionResult{Success: true, Data: data}, nil
	}

	token := ""
	if e.tokens != nil {
		t, err := e.tokens.GetValidAccessToken(ctx, agentID)
		if err != nil {
			// Intenções que não usam o placeholder seguem sem token
			e.logger.Warn("Falha ao obter access token", "agent_id", agentID, "error", err)
		} else {
			token = t
		}
	}

	NormalizeDateFields(fields, loc)

	results := make([]map[string]interface{}, len(intn.Preconditions))
	for i, pre := range intn.Preconditions {
		if err := e.runPrecondition(ctx, &intn.Preconditions[i], i, fields, results, token); err != nil {
			e.logger.Warn("Precondição abortou a execução",
				"intention", intn.ToolName,
				"precondition", pre.Name,
				"error", err)
			return nil, err
		}
	}

	mainURL := buildMainURL(intn, fields, results)
	headers := resolveHeaders(intn.Headers, token, fields, results)

	var body string
	if intn.Body != "" {
		rendered, err := RenderBodyTemplate(intn.Body, fields, results)
		if err != nil {
			return nil, fmt.Errorf("corpo da intenção %s: %w", intn.ToolName, err)
		}
		body = rendered
	}

	parsed, statusCode, status, raw, err := e.doRequest(ctx, intn.Method, mainURL, headers, body)
	if err != nil {
		return nil, err
	}

	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("chamada da intenção %s falhou (%d %s): %s",
			intn.ToolName, statusCode, status, string(raw))
	}

	if parsed == nil {
		parsed = map[string]interface{}{}
	}

	return &ExecutionResult{Success: true, Data: parsed, StatusCode: statusCode}, nil
}

// runPrecondition executa uma precondição. As precondições rodam estritamente
// na ordem declarada; a primeira falha aborta tudo.
func (e *Executor) runPrecondition(ctx context.Context, pre *intention.Precondition, index int, fields map[string]interface{}, results []map[string]interface{}, token string) error {
	preURL := ResolvePreconditionRefs(pre.URL, results, false)
	preURL = ResolveTemplate(preURL, fields)
	preURL = appendQueryParams(preURL, pre.QueryParams, fields, results)

	headers := resolveHeaders(pre.Headers, token, fields, results)

	var body string
	if pre.Body != "" {
		rendered, err := RenderBodyTemplate(pre.Body, fields, results)
		if err != nil {
			return fmt.Errorf("precondição %s: %w", pre.Name, err)
		}
		body = rendered
	}

	parsed, statusCode, _, raw, err := e.doRequest(ctx, pre.Method, preURL, headers, body)
	if err != nil {
		return fmt.Errorf("precondição %s: %w", pre.Name, err)
	}

	if statusCode < 200 || statusCode >= 300 {
		detail := extractErrorMessage(parsed)
		if detail == "" {
			detail = string(raw)
		}
		return fmt.Errorf("precondição %s falhou (%d): %s", pre.Name, statusCode, detail)
	}

	if pre.FailureCondition != "" {
		// O sandbox da failureCondition expõe um placeholder vazio de
		// preconditions, não os resultados acumulados. Só o successAction
		// enxerga o acumulado — comportamento herdado, coberto por teste.
		scope := &ExprScope{
			PreJSON:       parsed,
			Fields:        fields,
			Preconditions: []map[string]interface{}{{}},
		}
		failed, err := EvalCondition(pre.FailureCondition, scope)
		if err != nil {
			return fmt.Errorf("failureCondition da precondição %s: %w", pre.Name, err)
		}
		if failed {
			msg := pre.FailureMessage
			if msg == "" {
				msg = fmt.Sprintf("A verificação %s não foi satisfeita.", pre.Name)
			}
			return errors.New(msg)
		}
	}

	if pre.SuccessAction != "" {
		scope := &ExprScope{
			PreJSON:       parsed,
			Fields:        fields,
			Preconditions: results,
		}
		captured, err := EvalAssignments(pre.SuccessAction, scope)
		if err != nil {
			return fmt.Errorf("successAction da precondição %s: %w", pre.Name, err)
		}
		results[index] = captured
	}

	return nil
}

// buildMainURL monta a URL da chamada principal: referências a precondições
// e campos entram URL-encodados; para GET, campos normalizados que não viraram
// query param declarado são anexados ao final.
func buildMainURL(intn *intention.Intention, fields map[string]interface{}, results []map[string]interface{}) string {
	mainURL := ResolvePreconditionRefs(intn.URL, results, true)
	mainURL = ResolveTemplateEncoded(mainURL, fields)
	mainURL = appendQueryParams(mainURL, intn.QueryParams, fields, results)

	if strings.EqualFold(intn.Method, http.MethodGet) {
		declared := make(map[string]bool, len(intn.QueryParams))
		for _, qp := range intn.QueryParams {
			declared[qp.Name] = true
		}
		for name, value := range fields {
			if declared[name] || value == nil {
				continue
			}
			sep := "?"
			if strings.Contains(mainURL, "?") {
				sep = "&"
			}
			mainURL += sep + url.QueryEscape(name) + "=" + url.QueryEscape(stringify(value))
		}
	}

	return mainURL
}

// appendQueryParams resolve e anexa os parâmetros declarados, escolhendo
// & ou ? conforme a URL já tenha query string.
func appendQueryParams(base string, params []intention.QueryParam, fields map[string]interface{}, results []map[string]interface{}) string {
	for _, qp := range params {
		value := ResolvePreconditionRefs(qp.Value, results, false)
		value = ResolveTemplate(value, fields)

		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		base += sep + url.QueryEscape(qp.Name) + "=" + url.QueryEscape(value)
	}
	return base
}

// resolveHeaders resolve os templates de header: primeiro o placeholder
// dinâmico de token, depois referências a precondições e campos.
func resolveHeaders(templates map[string]string, token string, fields map[string]interface{}, results []map[string]interface{}) map[string]string {
	headers := make(map[string]string, len(templates))
	for name, tpl := range templates {
		value := strings.ReplaceAll(tpl, accessTokenPlaceholder, token)
		value = ResolvePreconditionRefs(value, results, false)
		value = ResolveTemplate(value, fields)
		headers[name] = value
	}
	return headers
}

// doRequest emite a chamada HTTP e tenta interpretar o corpo como JSON
// independente do status.
func (e *Executor) doRequest(ctx context.Context, method, rawURL string, headers map[string]string, body string) (interface{}, int, string, []byte, error) {
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), rawURL, reader)
	if err != nil {
		return nil, 0, "", nil, fmt.Errorf("erro ao criar requisição para %s: %w", rawURL, err)
	}

	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", nil, fmt.Errorf("erro na chamada para %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, resp.Status, nil, fmt.Errorf("erro ao ler resposta de %s: %w", rawURL, err)
	}

	var parsed interface{}
	if len(bytes.TrimSpace(raw)) > 0 {
		// Corpo não-JSON não é erro aqui; o status decide o destino
		_ = json.Unmarshal(raw, &parsed)
	}

	return parsed, resp.StatusCode, resp.Status, raw, nil
}

// extractErrorMessage procura error.message no corpo JSON interpretado
func extractErrorMessage(parsed interface{}) string {
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return ""
	}
	errObj, ok := obj["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := errObj["message"].(string)
	return msg
}

// parseFieldTime lê um campo de data/hora do mapa, interpretando valores sem
// offset no fuso informado.
func parseFieldTime(fields map[string]interface{}, name string, loc *time.Location) (time.Time, bool) {
	raw, ok := fields[name].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	return parseInLocation(raw, loc)
}

// NormalizeFields recupera tipos de valores extraídos pelo LLM, que chegam
// como string independente do tipo semântico: trim, "true"/"false" viram
// booleanos e valores com vírgula viram listas, exceto quando já parecem
// JSON ([ ou { no início).
func NormalizeFields(fields map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(fields))

	for key, value := range fields {
		s, ok := value.(string)
		if !ok {
			normalized[key] = value
			continue
		}

		trimmed := strings.TrimSpace(s)

		switch trimmed {
		case "true":
			normalized[key] = true
			continue
		case "false":
			normalized[key] = false
			continue
		}

		if strings.Contains(trimmed, ",") && !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
			parts := strings.Split(trimmed, ",")
			list := make([]string, len(parts))
			for i, part := range parts {
				list[i] = strings.TrimSpace(part)
			}
			normalized[key] = list
			continue
		}

		normalized[key] = trimmed
	}

	return normalized
}
