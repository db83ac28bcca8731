package spec

type sinkConfigs struct {
	Kafka  KafkaSink  `yaml:"kafka"`
	Stdout StdoutSink `yaml:"stdout"`
}

// KafkaSink is the YAML block for the optional Kafka result sink.
type KafkaSink struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
}

// StdoutSink is the YAML block for the stdout result sink.
type StdoutSink struct {
	Pretty bool `yaml:"pretty"`
}

// Mapping selects the accounts under one vault source path and names the
// transform applied to them.
type Mapping struct {
	SourcePattern string `yaml:"source_pattern"` // e.g. "email/gmail"
	Transform     string `yaml:"transform"`      // e.g. "email/gmail_to_canonical_v1"
	OutputName    string `yaml:"output_name"`    // optional label, default "canonical"
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	// Canonizer engine binding; Config points at the koanf-loaded
	// runtime config file (repo/venv paths).
	Engine struct {
		Driver string `yaml:"driver"` // "exec"
		Config string `yaml:"config"`
	} `yaml:"engine"`

	InputDir          string `yaml:"input_dir"`          // vault root
	OutputDir         string `yaml:"output_dir"`         // canonical output root
	TransformRegistry string `yaml:"transform_registry"` // *.meta.yaml directory

	Mappings []Mapping `yaml:"mappings"`

	Sinks       []string    `yaml:"sinks"`
	SinkConfigs sinkConfigs `yaml:"sink_configs"`

	MetricsPort int `yaml:"metrics_port"` // 0 = metrics endpoint disabled
}
