// ABOUTME: Remote host-agent facts client over HTTPS
// ABOUTME: Supports CA-pinned TLS and ssh+socks5 jumpbox dialing for fenced hosts

package facts

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"

	"github.com/Martel-IT/wp-nixos/planner"
)

// AgentProvider queries a host agent's facts endpoint on a remote shared
// host. The agent exposes GET /facts returning {ram_mb, cores}.
type AgentProvider struct {
	baseURL string
	client  *http.Client
}

// NewAgentProvider builds the client. caCert pins the agent's TLS
// certificate; empty caCert skips verification (lab hosts). allProxy, when
// set, routes connections through an ssh+socks5 jumpbox in the form
// ssh+socks5://user@host:port?private-key=/path/to/key.
func NewAgentProvider(baseURL, caCert, allProxy string) *AgentProvider {
	if !strings.HasPrefix(baseURL, "https://") && !strings.HasPrefix(baseURL, "http://") {
		baseURL = "https://" + baseURL
	}

	tlsConfig := &tls.Config{}
	if caCert != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(caCert)); ok {
			tlsConfig.RootCAs = certPool
		} else {
			slog.Warn("Failed to parse agent CA cert, using InsecureSkipVerify")
			tlsConfig.InsecureSkipVerify = true
		}
	} else {
		tlsConfig.InsecureSkipVerify = true
	}

	transport := &http.Transport{
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: 30 * time.Second,
	}

	if allProxy != "" {
		if dialContextFunc := createSOCKS5DialContextFunc(allProxy); dialContextFunc != nil {
			transport.DialContext = dialContextFunc
		}
	}

	return &AgentProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// SetHTTPClient allows overriding the HTTP client (useful for testing).
func (a *AgentProvider) SetHTTPClient(client *http.Client) {
	a.client = client
}

func (a *AgentProvider) Probe(ctx context.Context) (planner.HardwareFacts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/facts", nil)
	if err != nil {
		return planner.HardwareFacts{}, fmt.Errorf("failed to create facts request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return planner.HardwareFacts{}, fmt.Errorf("failed to reach host agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return planner.HardwareFacts{}, fmt.Errorf("host agent returned status %d: %s", resp.StatusCode, string(body))
	}

	var facts planner.HardwareFacts
	if err := json.NewDecoder(resp.Body).Decode(&facts); err != nil {
		return planner.HardwareFacts{}, fmt.Errorf("failed to parse agent facts: %w", err)
	}
	if facts.RAMMb == 0 || facts.Cores == 0 {
		return planner.HardwareFacts{}, fmt.Errorf("host agent reported unusable facts (ram=%d cores=%d)", facts.RAMMb, facts.Cores)
	}

	return facts, nil
}

func (a *AgentProvider) Source() string { return "agent" }

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy
// connections. Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse agent proxy URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse agent proxy query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("Agent proxy URL missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
