package di

// Secrets holds the credentials of Port's API.
type Secrets struct {
	PortClientID     string
	PortClientSecret string
}

// SetFromEnv sets secrets from environment variables.
func (s *Secrets) SetFromEnv(getEnv func(string) string) {
	s.PortClientID = getEnv("PORT_CLIENT_ID")
	s.PortClientSecret = getEnv("PORT_CLIENT_SECRET")
}

const defaultGitHubRepository = "org/default-repo"

// SetEnv populates flags from environment variables.
func SetEnv(flags *Flags, getEnv func(string) string) {
	flags.GitHubRepository = getEnv("GITHUB_REPOSITORY")
	if flags.GitHubRepository == "" {
		flags.GitHubRepository = defaultGitHubRepository
	}
}
