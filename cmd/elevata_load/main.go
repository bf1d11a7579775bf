// Command elevata_load is the Execution Orchestrator's CLI entry point
// (spec section 6): resolves a connection profile, loads the metadata
// catalog, renders and optionally executes one or every target dataset in
// topological order, and prints a one-line-per-dataset execution summary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/config"
	"github.com/elevata-labs/elevata-core/internal/dialect"
	"github.com/elevata-labs/elevata-core/internal/engine"
	"github.com/elevata-labs/elevata-core/internal/ingest"
	"github.com/elevata-labs/elevata-core/internal/metalog"
	"github.com/elevata-labs/elevata-core/internal/orchestrator"
	"github.com/elevata-labs/elevata-core/util"
)

var version string

func main() {
	util.InitSlog()
	util.InitZap()
	opts, targetName := parseOptions(os.Args[1:])

	profileName := opts.Profile
	if profileName == "" {
		profileName = os.Getenv("ELEVATA_PROFILE")
	}
	profilesPath := opts.ProfilesPath
	if profilesPath == "" {
		profilesPath = os.Getenv("ELEVATA_PROFILES_PATH")
	}
	catalogPath := opts.CatalogPath
	if catalogPath == "" {
		catalogPath = os.Getenv("ELEVATA_CATALOG_PATH")
	}

	profilesFile, err := config.LoadProfilesFile(profilesPath)
	fatalOnErr(err)
	profile, err := config.Resolve(profilesFile, profileName)
	fatalOnErr(err)
	if opts.Dialect != "" {
		profile.Dialect = opts.Dialect
	}

	cat, err := catalog.LoadYAML(catalogPath)
	fatalOnErr(err)

	d, err := dialect.New(profile.Dialect)
	fatalOnErr(err)

	ctx := context.Background()
	eng, err := engine.New(ctx, profile.ToEngineConfig())
	fatalOnErr(err)
	defer eng.Close()

	targetSystem := opts.TargetSystem
	if targetSystem == "" {
		targetSystem = profile.Dialect
	}

	runner := orchestrator.Runner{
		Catalog: cat,
		Engine:  eng,
		Dialect: d,
		Ingest: map[ingest.ConnectorKind]ingest.Connector{
			ingest.ConnectorRelational: ingest.RelationalConnector{Target: eng},
			ingest.ConnectorFile:       ingest.FileConnector{Target: eng},
			ingest.ConnectorRest:       ingest.RestConnector{Target: eng, HTTPClient: http.DefaultClient, PageParam: "page", Timeout: 30 * time.Second},
		},
		MetaLog:      metalog.Writer{Eng: eng, Dialect: d, MetaSchema: profile.MetaSchemaName},
		Profile:      profileName,
		TargetSystem: targetSystem,
		AllowedSchemas: allSchemaNames(cat),
	}

	roots := resolveRoots(cat, targetName, opts.Schema, opts.All)
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "No target datasets resolved for the given target/schema selection.")
		os.Exit(1)
	}

	policy := opts.toOrchestratorPolicy(profile.MetaSchemaName, profile.AutoProvisionSchemas, profile.AutoProvisionTables, profile.AutoProvisionMetaLog)
	snapshot, err := runner.RunBatch(ctx, roots, policy)
	fatalOnErr(err)

	printSummary(snapshot)

	if opts.WriteExecutionSnapshot {
		writeSnapshotFile(snapshot, opts.ExecutionSnapshotDir)
	}
	if opts.DiffAgainstSnapshot != "" || opts.DiffAgainstBatchRunID != "" {
		printDiff(snapshot, opts)
	}

	os.Exit(exitCode(snapshot))
}

func fatalOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func allSchemaNames(cat catalog.Catalog) map[string]bool {
	names := map[string]bool{"raw": true}
	for _, s := range cat.TargetSchemas() {
		names[s.ShortName] = true
	}
	return names
}

// resolveRoots implements spec section 4.10's root resolution: a single
// dataset key, or --all possibly scoped by --schema.
func resolveRoots(cat catalog.Catalog, targetName, schemaFilter string, all bool) []string {
	if !all {
		if targetName == "" {
			return nil
		}
		return []string{targetName}
	}

	var roots []string
	for _, s := range cat.TargetSchemas() {
		if schemaFilter != "" && s.ShortName != schemaFilter {
			continue
		}
		for _, td := range cat.TargetDatasets(s.ShortName) {
			roots = append(roots, td.Key())
		}
	}
	return roots
}

func printSummary(s orchestrator.Snapshot) {
	for _, r := range s.Results {
		fmt.Printf("%s %-40s %-18s %s\n", r.Status.Glyph(), r.DatasetKey, r.Status, r.StatusReason)
	}
}

func writeSnapshotFile(s orchestrator.Snapshot, dir string) {
	body, err := s.ToJSON()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to serialize execution snapshot:", err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("execution_snapshot_%s.json", s.BatchRunID))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write execution snapshot:", err)
	}
}

func printDiff(current orchestrator.Snapshot, opts cliOptions) {
	var baseline orchestrator.Snapshot
	if opts.DiffAgainstSnapshot != "" {
		raw, err := os.ReadFile(opts.DiffAgainstSnapshot)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to read baseline snapshot:", err)
			return
		}
		if err := json.Unmarshal(raw, &baseline); err != nil {
			fmt.Fprintln(os.Stderr, "failed to parse baseline snapshot:", err)
			return
		}
	}
	lines := orchestrator.DiffAgainstBaseline(baseline, current)
	if len(lines) == 0 {
		fmt.Println("no differences against baseline")
		return
	}
	if opts.DiffPrint {
		for _, l := range lines {
			fmt.Println(l)
		}
	}
}

func exitCode(s orchestrator.Snapshot) int {
	if s.HadError {
		return 1
	}
	return 0
}
