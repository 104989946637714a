package model

// Tunnel is a remotely managed tunnel as returned by the provider API.
type Tunnel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	Status    string `json:"status,omitempty"`
}

// DNSRecord is a DNS record in the configured zone.
type DNSRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Proxied *bool  `json:"proxied,omitempty"`
	TTL     int    `json:"ttl,omitempty"`
}

// CreateDNSRecord is the request body for creating or updating a DNS record.
type CreateDNSRecord struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl,omitempty"`
}

// AccessApp is a Zero Trust Access application.
type AccessApp struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	Domain          string `json:"domain"`
	Type            string `json:"type,omitempty"`
	SessionDuration string `json:"session_duration,omitempty"`
}

// AccessPolicy is an allow/deny policy attached to an Access application.
type AccessPolicy struct {
	ID       string       `json:"id,omitempty"`
	Name     string       `json:"name"`
	Decision string       `json:"decision"`
	Include  []PolicyRule `json:"include"`
	Exclude  []PolicyRule `json:"exclude,omitempty"`
	Require  []PolicyRule `json:"require,omitempty"`
}

// PolicyRule is one matcher inside an Access policy. Exactly one of the
// fields is set; the API uses the field name itself as the discriminator.
type PolicyRule struct {
	Email       *PolicyEmail       `json:"email,omitempty"`
	EmailDomain *PolicyEmailDomain `json:"email_domain,omitempty"`
	Everyone    map[string]any     `json:"everyone,omitempty"`
}

type PolicyEmail struct {
	Email string `json:"email"`
}

type PolicyEmailDomain struct {
	Domain string `json:"domain"`
}

// Account is a provider account the API token can act on.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Zone is a DNS zone the API token can act on.
type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// DiscoveredService is one open local port found by a scan run. It exists
// only for the duration of the scan invocation and is never persisted.
type DiscoveredService struct {
	Port        int    `json:"port"`
	Description string `json:"description"`
}
