package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// As expressões de failureCondition e successAction das precondições rodam
// em um avaliador próprio, de escopo fechado: apenas preJson, fields e
// preconditions são endereçáveis. Nada do processo hospedeiro vaza para cá.
//
// Gramática:
//
//	expr       := or
//	or         := and ("||" and)*
//	and        := equality ("&&" equality)*
//	equality   := comparison (("==" | "!=") comparison)*
//	comparison := unary ((">" | ">=" | "<" | "<=") unary)?
//	unary      := "!" unary | primary
//	primary    := número | 'string' | true | false | null | caminho | "(" expr ")"
//	caminho    := ident (("." ident) | ("[" número "]"))*

// ExprScope é o contexto fechado exposto às expressões
type ExprScope struct {
	PreJSON       interface{}
	Fields        map[string]interface{}
	Preconditions []map[string]interface{}
}

// EvalCondition avalia uma expressão booleana no escopo dado
func EvalCondition(expr string, scope *ExprScope) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return false, nil
	}
	p := newExprParser(expr)
	node, err := p.parseExpr()
	if err != nil {
		return false, err
	}
	if err := p.expectEOF(); err != nil {
		return false, err
	}
	value, err := node.eval(scope)
	if err != nil {
		return false, err
	}
	return Truthy(value), nil
}

// EvalAssignments executa uma successAction: uma lista de atribuições
// "chave = expr" separadas por ponto e vírgula, avaliadas no mesmo escopo.
// O resultado é o objeto capturado, endereçável depois como
// {{preconditions[i].chave}}.
func EvalAssignments(action string, scope *ExprScope) (map[string]interface{}, error) {
	captured := make(map[string]interface{})

	for _, stmt := range strings.Split(action, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		eq := strings.Index(stmt, "=")
		if eq <= 0 || (eq+1 < len(stmt) && stmt[eq+1] == '=') {
			return nil, fmt.Errorf("atribuição inválida em successAction: %q", stmt)
		}

		key := strings.TrimSpace(stmt[:eq])
		if !isIdent(key) {
			return nil, fmt.Errorf("nome de captura inválido em successAction: %q", key)
		}

		p := newExprParser(stmt[eq+1:])
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectEOF(); err != nil {
			return nil, err
		}

		value, err := node.eval(scope)
		if err != nil {
			return nil, err
		}
		captured[key] = value
	}

	return captured, nil
}

// Truthy segue a semântica de valores falsy: nil, false, 0, "" e coleções
// vazias são falsos; todo o resto é verdadeiro.
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// ---- análise léxica e sintática ----

type exprNode interface {
	eval(scope *ExprScope) (interface{}, error)
}

type literalNode struct{ value interface{} }

func (n *literalNode) eval(*ExprScope) (interface{}, error) { return n.value, nil }

type pathSeg struct {
	key   string
	index int
	isIdx bool
}

type pathNode struct {
	root string
	segs []pathSeg
}

func (n *pathNode) eval(scope *ExprScope) (interface{}, error) {
	var current interface{}
	switch n.root {
	case "preJson":
		current = scope.PreJSON
	case "fields":
		current = scope.Fields
	case "preconditions":
		list := make([]interface{}, len(scope.Preconditions))
		for i, m := range scope.Preconditions {
			list[i] = m
		}
		current = list
	default:
		// Identificadores soltos resolvem contra o mapa de campos
		if scope.Fields != nil {
			current = scope.Fields[n.root]
		}
	}

	for _, seg := range n.segs {
		if current == nil {
			return nil, nil
		}
		if seg.isIdx {
			list, ok := current.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(list) {
				return nil, nil
			}
			current = list[seg.index]
			continue
		}
		switch c := current.(type) {
		case map[string]interface{}:
			current = c[seg.key]
		default:
			return nil, nil
		}
	}

	return current, nil
}

type unaryNode struct{ operand exprNode }

func (n *unaryNode) eval(scope *ExprScope) (interface{}, error) {
	v, err := n.operand.eval(scope)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

type binaryNode struct {
	op          string
	left, right exprNode
}

func (n *binaryNode) eval(scope *ExprScope) (interface{}, error) {
	left, err := n.left.eval(scope)
	if err != nil {
		return nil, err
	}

	// Curto-circuito para operadores lógicos
	switch n.op {
	case "&&":
		if !Truthy(left) {
			return false, nil
		}
		right, err := n.right.eval(scope)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	case "||":
		if Truthy(left) {
			return true, nil
		}
		right, err := n.right.eval(scope)
		if err != nil {
			return nil, err
		}
		return Truthy(right), nil
	}

	right, err := n.right.eval(scope)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case ">", ">=", "<", "<=":
		ln, lok := asNumber(left)
		rn, rok := asNumber(right)
		if !lok || !rok {
			return false, nil
		}
		switch n.op {
		case ">":
			return ln > rn, nil
		case ">=":
			return ln >= rn, nil
		case "<":
			return ln < rn, nil
		default:
			return ln <= rn, nil
		}
	}

	return nil, fmt.Errorf("operador desconhecido: %s", n.op)
}

func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			return an == bn
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
	}
	return false
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

type exprParser struct {
	input string
	pos   int
}

func newExprParser(input string) *exprParser {
	return &exprParser{input: input}
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek(s string) bool {
	p.skipSpaces()
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *exprParser) accept(s string) bool {
	if p.peek(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *exprParser) expectEOF() error {
	p.skipSpaces()
	if p.pos < len(p.input) {
		return fmt.Errorf("expressão inválida a partir de %q", p.input[p.pos:])
	}
	return nil
}

func (p *exprParser) parseExpr() (exprNode, error) {
	return p.parseOr()
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.accept("&&") {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseEquality() (exprNode, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.accept("=="):
			op = "=="
		case p.accept("!="):
			op = "!="
		default:
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *exprParser) parseComparison() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	var op string
	switch {
	case p.accept(">="):
		op = ">="
	case p.accept("<="):
		op = "<="
	case p.accept(">"):
		op = ">"
	case p.accept("<"):
		op = "<"
	default:
		return left, nil
	}
	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: op, left: left, right: right}, nil
}

func (p *exprParser) parseUnary() (exprNode, error) {
	// "!" de negação, mas não o "!=" de desigualdade
	p.skipSpaces()
	if strings.HasPrefix(p.input[p.pos:], "!") && !strings.HasPrefix(p.input[p.pos:], "!=") {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (exprNode, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("expressão incompleta")
	}

	if p.accept("(") {
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, fmt.Errorf("parêntese não fechado")
		}
		return inner, nil
	}

	ch := p.input[p.pos]

	if ch == '\'' || ch == '"' {
		return p.parseString(ch)
	}

	if unicode.IsDigit(rune(ch)) || (ch == '-' && p.pos+1 < len(p.input) && unicode.IsDigit(rune(p.input[p.pos+1]))) {
		return p.parseNumber()
	}

	if unicode.IsLetter(rune(ch)) || ch == '_' {
		return p.parseIdentOrPath()
	}

	return nil, fmt.Errorf("token inesperado em %q", p.input[p.pos:])
}

func (p *exprParser) parseString(quote byte) (exprNode, error) {
	p.pos++ // abre aspas
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("string não terminada")
	}
	value := p.input[start:p.pos]
	p.pos++ // fecha aspas
	return &literalNode{value: value}, nil
}

func (p *exprParser) parseNumber() (exprNode, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("expressão incompleta")
	}
	start := p.pos
	if p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
		p.pos++
	}
	n, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return nil, fmt.Errorf("número inválido: %q", p.input[start:p.pos])
	}
	return &literalNode{value: n}, nil
}

func (p *exprParser) parseIdentOrPath() (exprNode, error) {
	root := p.parseIdentToken()

	switch root {
	case "true":
		return &literalNode{value: true}, nil
	case "false":
		return &literalNode{value: false}, nil
	case "null":
		return &literalNode{value: nil}, nil
	}

	node := &pathNode{root: root}
	for {
		if p.accept(".") {
			key := p.parseIdentToken()
			if key == "" {
				return nil, fmt.Errorf("caminho inválido após %q", root)
			}
			node.segs = append(node.segs, pathSeg{key: key})
			continue
		}
		if p.accept("[") {
			numNode, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			if !p.accept("]") {
				return nil, fmt.Errorf("índice não fechado")
			}
			idx := int(numNode.(*literalNode).value.(float64))
			node.segs = append(node.segs, pathSeg{index: idx, isIdx: true})
			continue
		}
		return node, nil
	}
}

func (p *exprParser) parseIdentToken() string {
	start := p.pos
	for p.pos < len(p.input) {
		ch := rune(p.input[p.pos])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if unicode.IsLetter(ch) || ch == '_' || (i > 0 && unicode.IsDigit(ch)) {
			continue
		}
		return false
	}
	return true
}
