package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	LHSPath string
	RHSPath string

	Operation  string
	Ontologies stringList
	GraphPath  string
	Sources    string
	LazyLoad   bool
	NoSemantic bool

	LogLevel    string
	LogFormat   string
	Debug       bool
	ShowVersion bool
	ShowHelp    bool
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	if value == "" {
		return fmt.Errorf("empty value")
	}
	*l = append(*l, value)
	return nil
}

var validOperations = []string{"subschema", "equivalent", "meet", "join"}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.Operation, "op",
		getEnv("SEMSCHEMA_OP", "subschema"),
		"Operation: subschema, equivalent, meet, join (env: SEMSCHEMA_OP)")

	flag.Var(&cfg.Ontologies, "ontology",
		"Well-known ontology to load (qudt, foaf, skos); repeatable")

	flag.StringVar(&cfg.GraphPath, "graph",
		getEnv("SEMSCHEMA_GRAPH", ""),
		"Ontology source URL or file path (env: SEMSCHEMA_GRAPH)")

	flag.StringVar(&cfg.Sources, "sources",
		getEnv("SEMSCHEMA_SOURCES", ""),
		"YAML source-list file of ontology sources (env: SEMSCHEMA_SOURCES)")

	flag.BoolVar(&cfg.LazyLoad, "lazy-load",
		getEnvBool("SEMSCHEMA_LAZY_LOAD", false),
		"Fetch concept namespaces on demand instead of up front (env: SEMSCHEMA_LAZY_LOAD)")

	flag.BoolVar(&cfg.NoSemantic, "no-semantic",
		getEnvBool("SEMSCHEMA_NO_SEMANTIC", false),
		"Disable semantic reasoning; compare structurally only (env: SEMSCHEMA_NO_SEMANTIC)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMSCHEMA_LOG_LEVEL", "warn"),
		"Log level: debug, info, warn, error (env: SEMSCHEMA_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMSCHEMA_LOG_FORMAT", "text"),
		"Log format: json, text (env: SEMSCHEMA_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("SEMSCHEMA_DEBUG", false),
		"Enable debug diagnostics (env: SEMSCHEMA_DEBUG)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = printDetailedHelp

	flag.Parse()

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if args := flag.Args(); len(args) >= 2 {
		cfg.LHSPath = args[0]
		cfg.RHSPath = args[1]
	}
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.LHSPath == "" || cfg.RHSPath == "" {
		return fmt.Errorf("two schema file arguments are required")
	}
	for _, path := range []string{cfg.LHSPath, cfg.RHSPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("schema file not found: %s", path)
		}
	}

	if !contains(validOperations, cfg.Operation) {
		return fmt.Errorf("invalid operation: %s (valid: %s)",
			cfg.Operation, strings.Join(validOperations, ", "))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.NoSemantic && (len(cfg.Ontologies) > 0 || cfg.GraphPath != "" || cfg.Sources != "") {
		return fmt.Errorf("--no-semantic conflicts with ontology source flags")
	}
	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - JSON Schema subtyping with semantic annotations

Usage: %s [options] <lhs-schema.json> <rhs-schema.json>

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Exit codes:
  0  relation holds (subschema/equivalent) or result printed (meet/join)
  1  relation does not hold
  2  error (malformed input, cyclic schema, invalid flags)

Examples:
  # Is lhs a subschema of rhs?
  %s lhs.json rhs.json

  # Equivalence with the FOAF ontology loaded
  %s --op=equivalent --ontology=foaf lhs.json rhs.json

  # Meet with a custom ontology and on-demand namespace fetching
  %s --op=meet --graph=./company.ttl --lazy-load lhs.json rhs.json

  # Structural comparison only
  %s --no-semantic lhs.json rhs.json

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
