package client

import "net/http"

// Credentials authenticates a request. Exactly one implementation is chosen
// per run: APIKeyCredential or BasicCredential.
type Credentials interface {
	Apply(req *http.Request)
	// Kind names the scheme for logging; it never includes the secret.
	Kind() string
}

// APIKeyCredential sends "Authorization: ApiKey <key>".
type APIKeyCredential struct {
	Key string
}

// Apply sets the ApiKey authorization header.
func (c APIKeyCredential) Apply(req *http.Request) {
	req.Header.Set("Authorization", "ApiKey "+c.Key)
}

// Kind returns "apikey".
func (c APIKeyCredential) Kind() string { return "apikey" }

// BasicCredential sends HTTP basic auth.
type BasicCredential struct {
	Username string
	Password string
}

// Apply sets basic auth on req.
func (c BasicCredential) Apply(req *http.Request) {
	req.SetBasicAuth(c.Username, c.Password)
}

// Kind returns "basic".
func (c BasicCredential) Kind() string { return "basic" }
