package conf

// Environment runtime environment type
type Environment string

const (
	LocalEnvironmentEnum   Environment = "loc"
	MainnetEnvironmentEnum Environment = "mainnet"
	TestnetEnvironmentEnum Environment = "testnet"
	ExampleEnvironmentEnum Environment = "example"
)

// SystemEnvironmentEnum current runtime environment, set from the -env flag before InitConfig
var SystemEnvironmentEnum = MainnetEnvironmentEnum

// GetYaml return the config file path for the current environment
func GetYaml() string {
	switch SystemEnvironmentEnum {
	case LocalEnvironmentEnum:
		return "./config-local.yaml"
	case TestnetEnvironmentEnum:
		return "./config-testnet.yaml"
	case ExampleEnvironmentEnum:
		return "./config.example.yaml"
	default:
		return "./config.yaml"
	}
}
