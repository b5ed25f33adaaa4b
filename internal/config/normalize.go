package config

import "strings"

func (c *Config) normalize() {
	c.normalizeProbes()
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
	c.normalizeLogging()
}

func (c *Config) normalizeProbes() {
	c.Probes.FFProbeBinary = strings.TrimSpace(c.Probes.FFProbeBinary)
	if c.Probes.FFProbeBinary == "" {
		c.Probes.FFProbeBinary = defaultFFProbeBinary
	}
	if strings.HasPrefix(c.Probes.FFProbeBinary, "~") {
		if expanded, err := expandPath(c.Probes.FFProbeBinary); err == nil {
			c.Probes.FFProbeBinary = expanded
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
