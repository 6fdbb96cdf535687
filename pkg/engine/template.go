package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

var (
	placeholderRe     = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)
	preconditionRefRe = regexp.MustCompile(`\{\{\s*preconditions\[(\d+)\]\.([A-Za-z0-9_]+)\s*\}\}`)
)

// ResolveTemplate substitui placeholders {{chave}} pelo valor correspondente
// no mapa de campos. Chaves ausentes ou nulas rendem string vazia.
func ResolveTemplate(tpl string, fields map[string]interface{}) string {
	return resolveFields(tpl, fields, false)
}

// ResolveTemplateEncoded substitui placeholders aplicando URL-encoding aos
// valores, para uso em URLs e query strings.
func ResolveTemplateEncoded(tpl string, fields map[string]interface{}) string {
	return resolveFields(tpl, fields, true)
}

func resolveFields(tpl string, fields map[string]interface{}, encode bool) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		key := strings.TrimSpace(placeholderRe.FindStringSubmatch(m)[1])
		value, ok := fields[key]
		if !ok || value == nil {
			return ""
		}
		s := stringify(value)
		if encode {
			return url.QueryEscape(s)
		}
		return s
	})
}

// ResolvePreconditionRefs substitui referências {{preconditions[i].chave}}
// pelos valores capturados nos successActions das precondições anteriores.
// Índices fora do intervalo ou chaves ausentes rendem string vazia.
func ResolvePreconditionRefs(tpl string, results []map[string]interface{}, encode bool) string {
	return preconditionRefRe.ReplaceAllStringFunc(tpl, func(m string) string {
		parts := preconditionRefRe.FindStringSubmatch(m)
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= len(results) || results[idx] == nil {
			return ""
		}
		value, ok := results[idx][parts[2]]
		if !ok || value == nil {
			return ""
		}
		s := stringify(value)
		if encode {
			return url.QueryEscape(s)
		}
		return s
	})
}

// RenderBodyTemplate renderiza o template de corpo de requisição. Diferente
// da substituição plana, corpos podem precisar de ramificação estrutural
// (omitir uma chave quando um campo está ausente), então o template é
// interpretado por text/template: {{chave}} plano vira {{field "chave"}},
// e blocos condicionais usam a sintaxe {{if .chave}}...{{end}}.
// A saída renderizada precisa ser JSON válido; falha de parse é um erro de
// configuração e aborta a execução da intenção.
func RenderBodyTemplate(tpl string, fields map[string]interface{}, preconditions []map[string]interface{}) (string, error) {
	// Referências a precondições são resolvidas antes da interpretação
	resolved := ResolvePreconditionRefs(tpl, preconditions, false)

	// Reescrever placeholders planos para a função field, preservando as
	// palavras-chave de controle do text/template
	rewritten := placeholderRe.ReplaceAllStringFunc(resolved, func(m string) string {
		key := strings.TrimSpace(placeholderRe.FindStringSubmatch(m)[1])
		switch key {
		case "if", "else", "end", "range", "with", "template", "block", "define":
			return m
		}
		return `{{field "` + key + `"}}`
	})

	t, err := template.New("body").Funcs(template.FuncMap{
		"field": func(key string) string {
			value, ok := fields[key]
			if !ok || value == nil {
				return ""
			}
			return stringify(value)
		},
	}).Parse(rewritten)
	if err != nil {
		return "", fmt.Errorf("template de corpo inválido: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, fields); err != nil {
		return "", fmt.Errorf("erro ao renderizar template de corpo: %w", err)
	}

	rendered := buf.String()
	if !json.Valid([]byte(rendered)) {
		return "", fmt.Errorf("corpo renderizado não é JSON válido: %s", rendered)
	}

	// Reserializar compacto
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(rendered)); err != nil {
		return "", fmt.Errorf("erro ao compactar corpo JSON: %w", err)
	}

	return compact.String(), nil
}

// stringify converte um valor de campo para sua forma textual. Listas e
// objetos são serializados como JSON; números inteiros não ganham casas
// decimais.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []interface{}, []string, map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}
