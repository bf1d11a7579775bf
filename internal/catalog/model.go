// Package catalog defines the metadata model this compiler consumes: source
// systems/datasets/columns, target schemas/datasets/columns, references,
// joins, and query trees. The core treats the catalog purely as an external
// collaborator (see DESIGN.md's "global mutable state" note) - nothing in
// this package mutates catalog state on behalf of a CRUD UI; it only reads a
// snapshot through the Catalog interface in catalog.go.
package catalog

import "time"

// SystemRole classifies a TargetColumn's technical purpose. The empty value
// means "ordinary business column".
type SystemRole string

const (
	RoleSurrogateKey     SystemRole = "surrogate_key"
	RoleForeignKey       SystemRole = "foreign_key"
	RoleBusinessKey      SystemRole = "business_key"
	RoleEntityKey        SystemRole = "entity_key"
	RoleRowHash          SystemRole = "row_hash"
	RoleLoadRunID        SystemRole = "load_run_id"
	RoleLoadedAt         SystemRole = "loaded_at"
	RoleVersionStartedAt SystemRole = "version_started_at"
	RoleVersionEndedAt   SystemRole = "version_ended_at"
	RoleVersionState     SystemRole = "version_state"
	RoleNone             SystemRole = ""
)

// CombinationMode is how a TargetDataset's inputs are combined.
type CombinationMode string

const (
	CombinationSingle CombinationMode = "single"
	CombinationUnion  CombinationMode = "union"
)

// InputRole classifies a TargetDatasetInput edge.
type InputRole string

const (
	InputPrimary         InputRole = "primary"
	InputEnrichment      InputRole = "enrichment"
	InputReferenceLookup InputRole = "reference_lookup"
	InputAuditOnly       InputRole = "audit_only"
)

// QueryNodeType enumerates the four query-tree operator kinds.
type QueryNodeType string

const (
	QuerySelect    QueryNodeType = "select"
	QueryAggregate QueryNodeType = "aggregate"
	QueryWindow    QueryNodeType = "window"
	QueryUnion     QueryNodeType = "union"
)

// SourceSystem is an external system that originates or receives data.
type SourceSystem struct {
	ShortName       string // lowercase letter + [a-z0-9], <=10 chars
	IsSource        bool
	IsTarget        bool
	Type            string // dialect/kind, e.g. "postgres", "sap_ecc"
	TargetShortName string // optional business-grouping alias
	Active          bool
	RetiredAt       *time.Time
}

// IncrementPolicy describes, for one environment, the active delta window
// definition for an incremental SourceDataset. Exactly one row per
// environment may have Active=true.
type IncrementPolicy struct {
	Environment string
	Active      bool
	CutoffExpr  string // expression/column defining {{DELTA_CUTOFF}}
}

// SourceDataset is a table/extract owned by a SourceSystem.
type SourceDataset struct {
	SourceSystem      string // SourceSystem.ShortName
	SchemaName        string
	SourceDatasetName string
	Integrate         bool
	Incremental       bool
	Active            bool
	StaticFilter      string // optional WHERE fragment
	IncrementFilter   string // optional WHERE fragment with {{DELTA_CUTOFF}}
	IncrementPolicies []IncrementPolicy

	// ConnectorKind selects the ingestion dispatcher's path for this
	// dataset (spec section 4.10 step 1, resolve_ingest_mode): one of
	// "" (defaults to "relational"), "relational", "file", "rest", or
	// "external" (warehouse-native load already lands the data; the
	// dispatcher is a no-op success).
	ConnectorKind string
	// ConnectorDSN/ConnectorPath/ConnectorURL configure the chosen
	// connector: a database/sql DSN for relational, a filesystem path for
	// file, or a base URL for REST.
	ConnectorDSN  string
	ConnectorPath string
	ConnectorURL  string
}

// Key returns the dataset's natural key tuple as a single string, suitable
// for map lookups across the generation service.
func (d SourceDataset) Key() string {
	return d.SourceSystem + "." + d.SchemaName + "." + d.SourceDatasetName
}

// SourceColumn is a physical column of a SourceDataset.
type SourceColumn struct {
	Dataset           string // SourceDataset.Key()
	Name              string
	OrdinalPosition   int
	CanonicalType     string
	Length            *int
	Precision         *int
	Scale             *int
	PrimaryKeyColumn  bool
	Integrate         bool
}

// SourceDatasetGroupMembership links one SourceDataset into a
// SourceDatasetGroup, ranking branches for ranked-mode consolidation.
type SourceDatasetGroupMembership struct {
	Group                string // SourceDatasetGroup.Name
	SourceDataset        string // SourceDataset.Key()
	IsPrimarySystem      bool
	SourceIdentityID      string
	SourceIdentityOrdinal int
}

// SourceDatasetGroup collapses N SourceDatasets into one logical stage
// entity.
type SourceDatasetGroup struct {
	Name                     string
	TargetShortName          string
	UnifiedSourceDatasetName string
	Memberships              []SourceDatasetGroupMembership
}

// SkPolicy configures surrogate-key derivation defaults for a TargetSchema.
type SkPolicy struct {
	Algorithm  string // e.g. "HASH256"
	NullToken  string
	Separator  string
}

// TargetSchema is a layer (raw, stage, rawcore, bizcore, serving, ...).
type TargetSchema struct {
	ShortName             string
	PhysicalPrefix        string
	ConsolidateGroups      bool
	DefaultMaterialization string
	DefaultHistorize       bool
	DefaultIncrStrategy    string
	SkPolicy               SkPolicy
	SurrogateKeysEnabled   bool
}

// TargetDataset is a derived/defined dataset within a TargetSchema.
type TargetDataset struct {
	Schema             string // TargetSchema.ShortName
	Name               string
	LineageKey         string
	FormerNames        []string
	Historize          bool
	HandleDeletes      bool
	IncrementalStrategy string // full|append|merge|snapshot|historize
	IncrementalSource  string // optional SourceDataset.Key()
	CombinationMode    CombinationMode
	QueryRoot          string // optional QueryNode id, base select
	QueryHead          string // optional QueryNode id, output node
	IsSystemManaged    bool
}

// Key returns the dataset's natural key.
func (d TargetDataset) Key() string { return d.Schema + "." + d.Name }

// TargetColumn is a column of a TargetDataset.
type TargetColumn struct {
	Dataset              string // TargetDataset.Key()
	Name                 string
	OrdinalPosition      int
	CanonicalType        string
	Length               *int
	Precision            *int
	Scale                *int
	SystemRole           SystemRole
	SurrogateExpression  string // DSL source, only meaningful for some roles
	ManualExpression     string // hand-authored expression for classic path
	FormerNames          []string
	LineageKey           string
	Active               bool
}

// TargetDatasetInput is an edge from a TargetDataset to exactly one of a
// SourceDataset or an upstream TargetDataset.
type TargetDatasetInput struct {
	Dataset            string // TargetDataset.Key()
	SourceDataset       string // optional
	UpstreamTarget      string // optional, TargetDataset.Key()
	Role               InputRole
}

// TargetColumnInput mirrors TargetDatasetInput at column granularity.
type TargetColumnInput struct {
	Column              string // Dataset.Name
	SourceColumn         string // optional
	UpstreamTargetColumn string // optional
}

// KeyComponent pairs a parent business-key column with the child-side
// column or expression used to resolve it when rewriting the FK expression.
type KeyComponent struct {
	ParentColumn string
	ChildExpr    string
}

// TargetDatasetReference is a parent-child FK relationship. It generates a
// system-managed FK column on the child dataset.
type TargetDatasetReference struct {
	ID            string
	ParentDataset string // TargetDataset.Key()
	ChildDataset  string // TargetDataset.Key()
	KeyComponents []KeyComponent
}

// LineageKey returns the reference's stable lineage key.
func (r TargetDatasetReference) LineageKey() string { return "fk:" + r.ID }

// JoinKind enumerates supported join types for TargetDatasetJoin.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinCross JoinKind = "cross"
)

// JoinPredicate is one ON-clause predicate of a TargetDatasetJoin.
type JoinPredicate struct {
	LeftExpr  string
	Operator  string // "=", "<>", ...
	RightExpr string
}

// TargetDatasetJoin is an explicit multi-input join used for bizcore/serving
// datasets with more than one upstream input.
type TargetDatasetJoin struct {
	Dataset    string // TargetDataset.Key()
	JoinOrder  int    // unique per dataset
	Kind       JoinKind
	LeftInput  string // only meaningful on the first join (join_order==1)
	RightInput string
	Predicates []JoinPredicate
}

// QueryNode is one node of a dialect-neutral query tree attached to a
// TargetDataset (query_root/query_head).
type QueryNode struct {
	ID      string
	Dataset string // TargetDataset.Key()
	Type    QueryNodeType

	// Select: no extra fields, reuses the owning dataset's classic
	// definition (TargetColumn/TargetDatasetInput/TargetDatasetJoin rows).

	// Aggregate fields.
	Input       string // upstream QueryNode.ID
	GroupKeys   []string
	Measures    []AggregateMeasure
	AggMode     string // "grouped" | "global"

	// Window fields.
	WindowFns []WindowFunctionSpec

	// Union fields.
	Branches       []string // upstream QueryNode.ID, in order
	OutputColumns  []string
	BranchMappings map[string]map[string]string // branch id -> output col -> branch expr
	UnionAll       bool
}

// AggregateMeasure describes one projected aggregate expression.
type AggregateMeasure struct {
	Alias    string
	Func     string // COUNT, COUNT_DISTINCT, STRING_AGG, SUM, MIN, MAX, AVG
	Arg      string
	Delim    string   // STRING_AGG separator
	OrderBy  []string // STRING_AGG ORDER BY, optional
}

// WindowFunctionSpec describes one window function column appended by a
// Window query node.
type WindowFunctionSpec struct {
	Alias       string
	Func        string
	Args        []string
	PartitionBy []string
	OrderBy     []string
}
