package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/elevata-labs/elevata-core/internal/materialize"
	"github.com/elevata-labs/elevata-core/internal/orchestrator"
)

// cliOptions mirrors spec section 6's flag set one-for-one, following the
// teacher's go-flags struct-tag idiom (cmd/mysqldef/mysqldef.go).
type cliOptions struct {
	Schema       string `long:"schema" description:"Restrict --all to one target schema" value-name:"short_name"`
	All          bool   `long:"all" description:"Run every target dataset (optionally scoped by --schema)"`
	Dialect      string `long:"dialect" description:"Override the active profile's dialect" value-name:"name"`
	TargetSystem string `long:"target-system" description:"Override the active profile's target system" value-name:"short_name"`

	Execute               bool `long:"execute" description:"Actually execute against the target system, instead of a dry run"`
	NoPrint                bool `long:"no-print" description:"Suppress printing rendered SQL to stdout"`
	NoDeps                 bool `long:"no-deps" description:"Restrict execution order to the given roots only, skipping upstream traversal"`

	DebugPlan             bool `long:"debug-plan" description:"Accepted; has no effect (no logical plan output is printed)"`
	DebugExecution         bool `long:"debug-execution" description:"Accepted; has no effect (no per-statement detail is printed)"`
	DebugMaterialization   bool `long:"debug-materialization" description:"Accepted; has no effect (no materialization plan output is printed)"`

	ContinueOnError bool `long:"continue-on-error" description:"Keep running subsequent datasets after a failure"`
	MaxRetries      int  `long:"max-retries" description:"Retry a failing dataset up to N times with a new load_run_id per attempt" default:"0"`

	NoTypeChanges       bool `long:"no-type-changes" description:"Strip column-evolution steps; block on any drift unless --allow-lossy-type-drift"`
	FailOnTypeDrift     bool `long:"fail-on-type-drift" description:"Block on any type drift, safe or not"`
	AllowLossyTypeDrift bool `long:"allow-lossy-type-drift" description:"Allow narrowing/incompatible type drift; applied as ALTER COLUMN where the dialect supports it (no table rebuild is run)"`

	NoPlanGuard bool `long:"no-plan-guard" description:"Disable the plan-fingerprint staleness guard"`

	WriteExecutionSnapshot bool   `long:"write-execution-snapshot" description:"Write the run's execution snapshot to a file"`
	ExecutionSnapshotDir   string `long:"execution-snapshot-dir" description:"Directory to write execution snapshots into" value-name:"path" default:"."`
	DiffAgainstSnapshot    string `long:"diff-against-snapshot" description:"Diff this run's snapshot against a baseline snapshot file" value-name:"file"`
	DiffAgainstBatchRunID  string `long:"diff-against-batch-run-id" description:"Request a diff against a baseline batch_run_id; the baseline is not read from meta.load_run_snapshot, so without --diff-against-snapshot the diff runs against an empty baseline" value-name:"uuid"`
	DiffPrint              bool   `long:"diff-print" description:"Print the human-readable diff to stdout"`

	Profile       string `long:"profile" description:"Named connection profile (overrides $ELEVATA_PROFILE)" value-name:"name"`
	ProfilesPath  string `long:"profiles-path" description:"YAML profiles file (overrides $ELEVATA_PROFILES_PATH)" value-name:"path"`
	CatalogPath   string `long:"catalog-path" description:"YAML catalog snapshot to load (overrides $ELEVATA_CATALOG_PATH)" value-name:"path"`

	Help    bool `long:"help" description:"Show this help"`
	Version bool `long:"version" description:"Show this version"`
}

// parseOptions parses args into cliOptions and the positional target_name,
// grounded on mysqldef.go's parseOptions: go-flags for everything, explicit
// env-var fallback applied by the caller afterward.
func parseOptions(args []string) (cliOptions, string) {
	var opts cliOptions
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[<target_name>] [options]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	targetName := ""
	if len(rest) > 0 {
		targetName = rest[0]
	}
	if targetName == "" && !opts.All {
		fmt.Fprintln(os.Stderr, "No target dataset is specified, and --all was not given!")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	return opts, targetName
}

func (o cliOptions) toOrchestratorPolicy(metaSchema string, autoProvisionSchemas, autoProvisionTables, autoProvisionMetaLog bool) orchestrator.Policy {
	return orchestrator.Policy{
		Execute:              o.Execute,
		Print:                !o.NoPrint,
		NoDeps:               o.NoDeps,
		ContinueOnError:      o.ContinueOnError,
		MaxRetries:           o.MaxRetries,
		NoPlanGuard:          o.NoPlanGuard,
		MetaSchemaName:       metaSchema,
		AutoProvisionSchemas: autoProvisionSchemas,
		AutoProvisionTables:  autoProvisionTables,
		AutoProvisionMetaLog: autoProvisionMetaLog,
		MaterializePolicy: materialize.Policy{
			NoTypeChanges:       o.NoTypeChanges,
			FailOnTypeDrift:     o.FailOnTypeDrift,
			AllowLossyTypeDrift: o.AllowLossyTypeDrift,
		},
	}
}
