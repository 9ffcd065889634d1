//go:build grpcgen

package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	harvexpb "github.com/HarvexIO/harvex/api/proto/v1"
	agentgrpc "github.com/HarvexIO/harvex/internal/grpc/agent"
	"github.com/HarvexIO/harvex/internal/security/pki"
)

const defaultPKIDir = "/var/lib/harvex/pki"

// logRunner acknowledges operations without executing them. The local thread
// runtime plugs in here.
type logRunner struct{}

func (logRunner) Run(ctx context.Context, op *harvexpb.Operation) (float64, error) {
	log.Printf("agent: executing %s x%d on target %s", op.Kind, op.Threads, op.TargetId)
	return 0, nil
}

func init() {
	go func() {
		addr := os.Getenv("HARVEX_CONTROLLER_ADDR")
		if addr == "" {
			addr = "localhost:9090"
		}
		hostname, _ := os.Hostname()
		agentID := os.Getenv("HARVEX_AGENT_ID")
		if agentID == "" {
			agentID = hostname
		}
		capacity := 32.0
		if v := os.Getenv("HARVEX_AGENT_CAPACITY"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				capacity = f
			}
		}
		ctx := context.Background()

		caCertPath := os.Getenv("HARVEX_CA_CERT")
		clientCertPath := os.Getenv("HARVEX_CLIENT_CERT")
		clientKeyPath := os.Getenv("HARVEX_CLIENT_KEY")

		// Auto-enroll against the controller HTTP API when no client certs
		// were provided but an enrollment token is.
		if (clientCertPath == "" || clientKeyPath == "") && os.Getenv("HARVEX_ENROLL_TOKEN") != "" {
			if err := autoEnrollClientCert(agentID); err != nil {
				log.Printf("agent auto-enroll failed: %v", err)
			} else {
				pkiDir := pkiDirFromEnv()
				_, _, clientCertPath, clientKeyPath = pki.Paths(pkiDir, "agent-"+agentID)
				if caCertPath == "" {
					caCertPath, _, _, _ = pki.Paths(pkiDir, "")
				}
			}
		}

		// Dev fallback: self-issue from a local CA.
		if caCertPath == "" || clientCertPath == "" || clientKeyPath == "" {
			pkiDir := pkiDirFromEnv()
			caCert, caKey, err := pki.EnsureCA(pkiDir, "Harvex Root CA", 365*24*time.Hour)
			if err != nil {
				log.Printf("agent: EnsureCA: %v", err)
				return
			}
			clientCertPath, clientKeyPath, err = pki.IssueCertificate(pkiDir, "agent-"+agentID, agentID, false, caCert, caKey, 365*24*time.Hour, []string{hostname})
			if err != nil {
				log.Printf("agent: IssueCertificate: %v", err)
				return
			}
			caCertPath, _, _, _ = pki.Paths(pkiDir, "")
		}
		tlsCfg, err := pki.ClientTLSConfig(caCertPath, clientCertPath, clientKeyPath, "harvex-controller")
		if err != nil {
			log.Printf("agent: TLS config: %v", err)
			return
		}
		creds := credentials.NewTLS(tlsCfg)
		if err := agentgrpc.Run(ctx, addr, agentID, hostname, capacity, logRunner{}, grpc.WithTransportCredentials(creds)); err != nil {
			log.Printf("agent: controller link exited: %v", err)
		}
	}()
}

func pkiDirFromEnv() string {
	if dir := os.Getenv("HARVEX_PKI_DIR"); dir != "" {
		return dir
	}
	return defaultPKIDir
}

// autoEnrollClientCert generates a key and CSR and exchanges them, with the
// token from HARVEX_ENROLL_TOKEN, for a signed client certificate via the
// controller's enrollment endpoint. Cert and key land under the PKI dir as
// agent-<id>.{pem,key}.
func autoEnrollClientCert(agentID string) error {
	token := os.Getenv("HARVEX_ENROLL_TOKEN")
	if token == "" {
		return nil
	}
	pkiDir := pkiDirFromEnv()
	if err := pki.EnsureDir(pkiDir); err != nil {
		return fmt.Errorf("ensure pki dir: %w", err)
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	_, _, certPath, keyPath := pki.Paths(pkiDir, "agent-"+agentID)
	if err := writePrivateKeyPEM(keyPath, key); err != nil {
		return fmt.Errorf("write key: %w", err)
	}

	csrDER, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject: pkix.Name{CommonName: agentID},
	}, key)
	if err != nil {
		return fmt.Errorf("create csr: %w", err)
	}
	csrPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: csrDER})

	baseURL := os.Getenv("HARVEX_CONTROLLER_HTTP")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	body, err := json.Marshal(map[string]string{"token": token, "csr_pem": string(csrPEM)})
	if err != nil {
		return err
	}
	resp, err := http.Post(baseURL+"/api/v1/agents/enroll/csr", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post csr: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("csr sign failed: status %d", resp.StatusCode)
	}
	var out struct {
		CertPEM string `json:"cert_pem"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode csr response: %w", err)
	}
	if out.CertPEM == "" {
		return fmt.Errorf("empty cert pem from controller")
	}
	return os.WriteFile(certPath, []byte(out.CertPEM), 0644)
}

func writePrivateKeyPEM(path string, key *rsa.PrivateKey) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return pem.Encode(f, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}
