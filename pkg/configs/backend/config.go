package backend

// BackendConfig is the server-side configuration, read from a YAML file.
type BackendConfig struct {
	// listen port of the HTTP API, as a string for net.JoinHostPort
	ServerPort string `yaml:"port"`

	// connection string of the PostgreSQL database
	DBURI string `yaml:"dbURI"`

	LogLevel string `yaml:"logLevel"`

	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
}

// StorageConfig selects where payloads live.
type StorageConfig struct {
	// "filesystem" or "s3"
	Kind string `yaml:"kind"`

	// root directory, for kind = filesystem
	Root string `yaml:"root"`

	// bucket and optional key prefix, for kind = s3
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// AuthConfig points at the credential material.
type AuthConfig struct {
	// YAML file with the user list; edits to it restart the server
	UserFile string `yaml:"userFile"`

	// file holding the token-signing secret
	KeyFile string `yaml:"keyFile"`

	// token lifetime, e.g. "8h". default: 24h
	TokenLifetime string `yaml:"tokenLifetime"`
}
