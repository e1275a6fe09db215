// Package main implements the semschema command line tool: it decides
// subschema and equivalence relations between two JSON Schema documents and
// computes their meet and join, with optional semantic reasoning over an
// ontology graph.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/c360/semschema"
	"github.com/c360/semschema/config"
	"github.com/c360/semschema/graph"
	"github.com/c360/semschema/semantic"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "semschema"
)

// exitFalse signals a clean "relation does not hold" verdict.
type exitFalse struct{}

func (exitFalse) Error() string { return "relation does not hold" }

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		if _, ok := err.(exitFalse); ok {
			os.Exit(1)
		}
		slog.Error("operation failed", "error", err)
		os.Exit(2)
	}
}

func run() error {
	cfg := parseFlags()
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	lhs, err := loadSchema(cfg.LHSPath)
	if err != nil {
		return err
	}
	rhs, err := loadSchema(cfg.RHSPath)
	if err != nil {
		return err
	}

	settings := config.NewSettings()
	settings.SemanticReasoning = !cfg.NoSemantic
	settings.Debug = cfg.Debug

	resolver, err := buildResolver(cfg, lhs, rhs, logger)
	if err != nil {
		return err
	}

	checker, err := semschema.New(
		semschema.WithSettings(config.NewSafeSettings(settings)),
		semschema.WithResolver(resolver),
		semschema.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	return execute(checker, cfg.Operation, lhs, rhs)
}

func execute(checker *semschema.Checker, operation string, lhs, rhs map[string]any) error {
	switch operation {
	case "subschema":
		ok, err := checker.IsSubschema(lhs, rhs)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		if !ok {
			return exitFalse{}
		}
	case "equivalent":
		ok, err := checker.IsEquivalent(lhs, rhs)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		if !ok {
			return exitFalse{}
		}
	case "meet":
		result, err := checker.Meet(lhs, rhs)
		if err != nil {
			return err
		}
		return printSchema(result)
	case "join":
		result, err := checker.Join(lhs, rhs)
		if err != nil {
			return err
		}
		return printSchema(result)
	default:
		return fmt.Errorf("unknown operation: %s", operation)
	}
	return nil
}

// buildResolver assembles the semantic resolver from the ontology flags.
// Semantic reasoning with stype-bearing inputs requires at least one
// ontology source; refusing early beats silently answering "unrelated" for
// every concept pair.
func buildResolver(cfg *CLIConfig, lhs, rhs map[string]any, logger *slog.Logger) (*semantic.Resolver, error) {
	if cfg.NoSemantic {
		return semantic.NewResolver(semantic.WithResolverLogger(logger))
	}

	locations, err := gatherSources(cfg)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 && !cfg.LazyLoad {
		if hasStype(lhs) || hasStype(rhs) {
			return nil, fmt.Errorf(
				"schemas carry stype annotations but no ontology was supplied; " +
					"pass --ontology, --graph or --sources, or use --no-semantic")
		}
		return semantic.NewResolver(semantic.WithResolverLogger(logger))
	}

	g := graph.New()
	loader := graph.NewLoader(graph.WithLogger(logger))
	if len(locations) > 0 {
		added := loader.LoadAll(context.Background(), g, locations)
		logger.Info("ontology graph assembled", "sources", len(locations), "triples", added)
	}

	opts := []semantic.ResolverOption{
		semantic.WithGraph(g),
		semantic.WithResolverLogger(logger),
	}
	if cfg.LazyLoad {
		opts = append(opts, semantic.WithLazyLoad(loader))
	}
	return semantic.NewResolver(opts...)
}

func gatherSources(cfg *CLIConfig) ([]string, error) {
	var locations []string
	for _, name := range cfg.Ontologies {
		url, err := graph.ResolveWellKnown(name)
		if err != nil {
			return nil, err
		}
		locations = append(locations, url)
	}
	if cfg.GraphPath != "" {
		locations = append(locations, cfg.GraphPath)
	}
	if cfg.Sources != "" {
		fromList, err := graph.LoadSourceList(cfg.Sources)
		if err != nil {
			return nil, err
		}
		locations = append(locations, fromList...)
	}
	return locations, nil
}

func loadSchema(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema %s: %w", path, err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	decoder.UseNumber()
	var doc map[string]any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return doc, nil
}

// hasStype reports whether any node of a schema document carries an stype
// annotation. Documents come from JSON files, so the tree is finite.
func hasStype(node any) bool {
	switch v := node.(type) {
	case map[string]any:
		if _, ok := v["stype"]; ok {
			return true
		}
		for _, child := range v {
			if hasStype(child) {
				return true
			}
		}
	case []any:
		for _, child := range v {
			if hasStype(child) {
				return true
			}
		}
	}
	return false
}

func printSchema(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
