// Package oauth renova access tokens Google a partir do refresh token
// persistido por agente.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/matheusvb/atendai/internal/domain/agent"
	"github.com/matheusvb/atendai/pkg/logger"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// GoogleTokenProvider renova o access token via refresh token quando o token
// persistido expira, e grava o token novo de volta no repositório. As
// renovações do mesmo agente são serializadas para não desperdiçar quota.
type GoogleTokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	agents       agent.Repository
	logger       logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGoogleTokenProvider cria o provedor de tokens Google
func NewGoogleTokenProvider(clientID, clientSecret string, agents agent.Repository, log logger.Logger) *GoogleTokenProvider {
	return &GoogleTokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     googleTokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		agents:       agents,
		logger:       log,
		locks:        make(map[string]*sync.Mutex),
	}
}

// WithTokenURL troca o endpoint de token (usado em testes)
func (p *GoogleTokenProvider) WithTokenURL(u string) *GoogleTokenProvider {
	p.tokenURL = u
	return p
}

func (p *GoogleTokenProvider) agentLock(agentID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[agentID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[agentID] = lock
	}
	return lock
}

// GetValidAccessToken devolve um access token utilizável para o agente,
// renovando pelo refresh token quando necessário.
func (p *GoogleTokenProvider) GetValidAccessToken(ctx context.Context, agentID string) (string, error) {
	lock := p.agentLock(agentID)
	lock.Lock()
	defer lock.Unlock()

	a, err := p.agents.FindByID(ctx, agentID)
	if err != nil {
		return "", fmt.Errorf("erro ao buscar agente para renovação de token: %w", err)
	}

	if a.Google.Valid(time.Now()) {
		return a.Google.AccessToken, nil
	}

	if a.Google.RefreshToken == "" {
		return "", agent.ErrNoCredential
	}

	cred, err := p.refresh(ctx, a.Google.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := p.agents.UpdateGoogleCredential(ctx, agentID, cred); err != nil {
		// Token renovado continua válido mesmo sem persistir
		p.logger.Warn("Falha ao persistir credencial renovada", "agent_id", agentID, "error", err)
	}

	return cred.AccessToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (p *GoogleTokenProvider) refresh(ctx context.Context, refreshToken string) (agent.GoogleCredential, error) {
	form := url.Values{}
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return agent.GoogleCredential{}, fmt.Errorf("erro ao montar requisição de token: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return agent.GoogleCredential{}, fmt.Errorf("erro ao renovar token Google: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return agent.GoogleCredential{}, fmt.Errorf("renovação de token Google retornou %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return agent.GoogleCredential{}, fmt.Errorf("resposta de token Google inválida: %w", err)
	}
	if tr.AccessToken == "" {
		return agent.GoogleCredential{}, fmt.Errorf("renovação de token Google não retornou access_token")
	}

	return agent.GoogleCredential{
		RefreshToken: refreshToken,
		AccessToken:  tr.AccessToken,
		Expiry:       time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
