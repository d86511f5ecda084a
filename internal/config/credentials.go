package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Credential sources
const (
	SourceEnv     = "env"
	SourceSecrets = "secrets"
)

// Credentials is everything needed to reach the text-generation service
type Credentials struct {
	APIKey         string `yaml:"AZURE_OPENAI_API_KEY"`
	APIVersion     string `yaml:"AZURE_OPENAI_API_VERSION"`
	Endpoint       string `yaml:"AZURE_OPENAI_ENDPOINT"`
	DeploymentName string `yaml:"AZURE_OPENAI_CHAT_DEPLOYMENT_NAME"`
}

// Complete reports whether the key, endpoint and deployment are all set
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.Endpoint != "" && c.DeploymentName != ""
}

// CredentialsProvider resolves model credentials from one configuration source
type CredentialsProvider interface {
	Credentials() (Credentials, error)
	Name() string
}

// EnvCredentials reads credentials from the process environment
type EnvCredentials struct{}

// Credentials implements CredentialsProvider
func (EnvCredentials) Credentials() (Credentials, error) {
	return Credentials{
		APIKey:         os.Getenv("AZURE_OPENAI_API_KEY"),
		APIVersion:     os.Getenv("AZURE_OPENAI_API_VERSION"),
		Endpoint:       os.Getenv("AZURE_OPENAI_ENDPOINT"),
		DeploymentName: os.Getenv("AZURE_OPENAI_CHAT_DEPLOYMENT_NAME"),
	}, nil
}

// Name implements CredentialsProvider
func (EnvCredentials) Name() string { return SourceEnv }

// SecretsFileCredentials reads credentials from a YAML secrets store.
// Keys use the same names as the environment variables.
type SecretsFileCredentials struct {
	Path string
}

// Credentials implements CredentialsProvider
func (s SecretsFileCredentials) Credentials() (Credentials, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read secrets file %s: %w", s.Path, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse secrets file %s: %w", s.Path, err)
	}
	return creds, nil
}

// Name implements CredentialsProvider
func (SecretsFileCredentials) Name() string { return SourceSecrets }

// NewCredentialsProvider picks the credential loader at startup
func NewCredentialsProvider(source, secretsPath string) (CredentialsProvider, error) {
	switch source {
	case "", SourceEnv:
		return EnvCredentials{}, nil
	case SourceSecrets:
		return SecretsFileCredentials{Path: secretsPath}, nil
	default:
		return nil, fmt.Errorf("unknown credentials source %q (want %s or %s)", source, SourceEnv, SourceSecrets)
	}
}
