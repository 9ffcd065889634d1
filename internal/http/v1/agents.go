package v1

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/HarvexIO/harvex/internal/security/enroll"
	"github.com/HarvexIO/harvex/internal/security/pki"
)

const defaultPKIDir = "/var/lib/harvex/pki"

type enrollTokenReq struct {
	WorkerID string `json:"worker_id"`
	TTL      string `json:"ttl"` // Go duration, e.g. "15m"
}

type enrollTokenResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type csrSignReq struct {
	Token  string `json:"token"`
	CSRPEM string `json:"csr_pem"`
}

type csrSignResp struct {
	CertPEM string `json:"cert_pem"`
}

// createEnrollToken handles POST /agents/enroll/token. The token is bound to
// the worker id it was requested for.
func createEnrollToken(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("HARVEX_ENROLL_JWT_SECRET")
	if secret == "" {
		http.Error(w, "enrollment disabled: HARVEX_ENROLL_JWT_SECRET not set", http.StatusForbidden)
		return
	}
	var req enrollTokenReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.WorkerID == "" {
		http.Error(w, "worker_id is required", http.StatusBadRequest)
		return
	}
	ttl := 15 * time.Minute
	if req.TTL != "" {
		if d, err := time.ParseDuration(req.TTL); err == nil {
			ttl = d
		}
	}
	tok, err := enroll.IssueToken([]byte(secret), req.WorkerID, ttl)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to issue token: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, enrollTokenResp{Token: tok, ExpiresAt: time.Now().Add(ttl)})
}

// signCSR handles POST /agents/enroll/csr. A valid enroll token admits the
// CSR to the controller CA, which returns a client certificate for the mTLS
// agent link.
func signCSR(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("HARVEX_ENROLL_JWT_SECRET")
	if secret == "" {
		http.Error(w, "enrollment disabled: HARVEX_ENROLL_JWT_SECRET not set", http.StatusForbidden)
		return
	}
	var req csrSignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.CSRPEM == "" {
		http.Error(w, "token and csr_pem are required", http.StatusBadRequest)
		return
	}
	if _, err := enroll.VerifyToken([]byte(secret), req.Token); err != nil {
		http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
		return
	}
	caCert, caKey, err := loadSigningCA()
	if err != nil {
		http.Error(w, fmt.Sprintf("CA unavailable: %v", err), http.StatusInternalServerError)
		return
	}
	certPEM, err := pki.SignCSR(caCert, caKey, []byte(req.CSRPEM), false, 365*24*time.Hour)
	if err != nil {
		http.Error(w, fmt.Sprintf("sign CSR failed: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, csrSignResp{CertPEM: string(certPEM)})
}

// loadSigningCA prefers an operator-provided CA (HARVEX_CA_CERT/HARVEX_CA_KEY)
// and otherwise bootstraps one under HARVEX_PKI_DIR.
func loadSigningCA() (*x509.Certificate, *rsa.PrivateKey, error) {
	if certPath, keyPath := os.Getenv("HARVEX_CA_CERT"), os.Getenv("HARVEX_CA_KEY"); certPath != "" && keyPath != "" {
		return pki.LoadCA(certPath, keyPath)
	}
	dir := os.Getenv("HARVEX_PKI_DIR")
	if dir == "" {
		dir = defaultPKIDir
	}
	return pki.EnsureCA(dir, "Harvex Root CA", 365*24*time.Hour)
}
