package throttle

import (
	"net/http"
)

// RoundTripper returns an http.RoundTripper that gates every outbound
// request through the named policy before delegating to base. The
// request's context bounds the wait. A nil base falls back to
// http.DefaultTransport.
//
// Example:
//
//	rt, err := mgr.RoundTripper("search-api", nil)
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{Transport: rt}
func (m *Manager) RoundTripper(policy string, base http.RoundTripper) (http.RoundTripper, error) {
	// Fail at construction for unknown policies, not on first request.
	if _, err := m.Gate(policy); err != nil {
		return nil, err
	}
	return &policyTransport{manager: m, policy: policy, base: base}, nil
}

type policyTransport struct {
	manager *Manager
	policy  string
	base    http.RoundTripper
}

func (t *policyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.manager.Wait(req.Context(), t.policy); err != nil {
		return nil, err
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
