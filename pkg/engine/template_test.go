package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemplate(t *testing.T) {
	fields := map[string]interface{}{
		"name":  "Ana Souza",
		"count": float64(3),
		"tags":  []string{"vip", "novo"},
		"nil":   nil,
	}

	assert.Equal(t, "Olá Ana Souza", ResolveTemplate("Olá {{name}}", fields))
	assert.Equal(t, "total=3", ResolveTemplate("total={{count}}", fields))
	assert.Equal(t, `["vip","novo"]`, ResolveTemplate("{{tags}}", fields))
	assert.Equal(t, "", ResolveTemplate("{{nil}}", fields))
	assert.Equal(t, "", ResolveTemplate("{{desconhecido}}", fields))
	assert.Equal(t, "com espaços ok", ResolveTemplate("com espaços {{ name2 }}ok", map[string]interface{}{"name2": ""}))
}

func TestResolveTemplateEncoded(t *testing.T) {
	fields := map[string]interface{}{"q": "João & Maria"}
	assert.Equal(t, "busca?q=Jo%C3%A3o+%26+Maria", ResolveTemplateEncoded("busca?q={{q}}", fields))
}

func TestResolvePreconditionRefs(t *testing.T) {
	results := []map[string]interface{}{
		{"id": "abc-1"},
		nil,
	}

	assert.Equal(t, "/items/abc-1", ResolvePreconditionRefs("/items/{{preconditions[0].id}}", results, false))
	assert.Equal(t, "/items/", ResolvePreconditionRefs("/items/{{preconditions[1].id}}", results, false))
	assert.Equal(t, "/items/", ResolvePreconditionRefs("/items/{{preconditions[5].id}}", results, false))
	assert.Equal(t, "/items/", ResolvePreconditionRefs("/items/{{preconditions[0].nada}}", results, false))
}

func TestRenderBodyTemplate(t *testing.T) {
	fields := map[string]interface{}{
		"summary": "Reunião",
		"email":   "ana@example.com",
	}

	body, err := RenderBodyTemplate(`{"summary": "{{summary}}", "attendee": "{{email}}"}`, fields, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"Reunião","attendee":"ana@example.com"}`, body)
}

func TestRenderBodyTemplateConditional(t *testing.T) {
	tpl := `{"summary": "{{summary}}"{{if .email}}, "attendee": "{{email}}"{{end}}}`

	withEmail, err := RenderBodyTemplate(tpl, map[string]interface{}{"summary": "X", "email": "a@b.com"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"X","attendee":"a@b.com"}`, withEmail)

	withoutEmail, err := RenderBodyTemplate(tpl, map[string]interface{}{"summary": "X"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"X"}`, withoutEmail)
}

func TestRenderBodyTemplatePreconditionRefs(t *testing.T) {
	results := []map[string]interface{}{{"calendarId": "cal-9"}}

	body, err := RenderBodyTemplate(`{"calendar": "{{preconditions[0].calendarId}}"}`, map[string]interface{}{}, results)
	require.NoError(t, err)
	assert.JSONEq(t, `{"calendar":"cal-9"}`, body)
}

func TestRenderBodyTemplateInvalidJSON(t *testing.T) {
	_, err := RenderBodyTemplate(`{"aberto": `, map[string]interface{}{}, nil)
	assert.Error(t, err)
}
