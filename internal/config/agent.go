package config

// AgentConfig holds the payment agent's identity and instruction source.
type AgentConfig struct {
	Name            string `env:"AGENT_NAME" yaml:"name" default:"Zapbot"`
	AppName         string `env:"AGENT_APP_NAME" yaml:"app_name" default:"zapbot"`
	InstructionFile string `env:"AGENT_INSTRUCTION_FILE" yaml:"instruction_file" default:"system.md"`
}
