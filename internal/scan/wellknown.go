package scan

// Candidate is one port the scanner will probe, with the human label shown
// when it turns out to be open.
type Candidate struct {
	Port        int
	Description string
}

// wellKnown lists common development and infrastructure ports. A scan always
// covers these; user-supplied extra ports are appended. Order here is
// irrelevant since scan output is sorted by port.
var wellKnown = []Candidate{
	{80, "HTTP"},
	{443, "HTTPS"},
	{3000, "React / Node.js"},
	{3001, "React Dev"},
	{4000, "GraphQL / Phoenix"},
	{4200, "Angular"},
	{5000, "Flask / Python"},
	{5173, "Vite"},
	{5432, "PostgreSQL"},
	{6379, "Redis"},
	{8000, "Django / Uvicorn"},
	{8080, "HTTP Alternate"},
	{8443, "HTTPS Alternate"},
	{8888, "Jupyter"},
	{9000, "PHP-FPM / SonarQube"},
	{9090, "Prometheus"},
	{27017, "MongoDB"},
}
