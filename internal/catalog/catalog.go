package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Catalog is the read-only interface the compiler consumes. Production
// deployments back it with the metadata editor's database; this package also
// ships an in-memory fixture (Static) that loads a YAML snapshot, used by
// tests and by local/dev runs via --catalog-path / ELEVATA_CATALOG_PATH.
type Catalog interface {
	SourceSystems() []SourceSystem
	SourceDatasets() []SourceDataset
	SourceColumns(datasetKey string) []SourceColumn
	SourceDatasetGroups() []SourceDatasetGroup

	TargetSchemas() []TargetSchema
	TargetDatasets(schema string) []TargetDataset
	TargetDataset(key string) (TargetDataset, bool)
	TargetColumns(datasetKey string) []TargetColumn

	TargetDatasetInputs(datasetKey string) []TargetDatasetInput
	TargetColumnInputs(datasetKey string) []TargetColumnInput
	TargetDatasetReferences(childDataset string) []TargetDatasetReference
	TargetDatasetJoins(datasetKey string) []TargetDatasetJoin

	QueryNode(id string) (QueryNode, bool)
}

// Static is an in-memory Catalog backed by a fully materialized snapshot,
// typically loaded from YAML via LoadYAML. It mirrors the shape of
// database.ParseGeneratorConfig's "read the whole config up front" idiom.
type Static struct {
	Systems      []SourceSystem               `yaml:"source_systems"`
	Datasets     []SourceDataset              `yaml:"source_datasets"`
	Columns      []SourceColumn               `yaml:"source_columns"`
	Groups       []SourceDatasetGroup         `yaml:"source_dataset_groups"`
	Schemas      []TargetSchema               `yaml:"target_schemas"`
	TDatasets    []TargetDataset              `yaml:"target_datasets"`
	TColumns     []TargetColumn               `yaml:"target_columns"`
	DatasetEdges []TargetDatasetInput         `yaml:"target_dataset_inputs"`
	ColumnEdges  []TargetColumnInput          `yaml:"target_column_inputs"`
	References   []TargetDatasetReference     `yaml:"target_dataset_references"`
	Joins        []TargetDatasetJoin          `yaml:"target_dataset_joins"`
	QueryNodes   []QueryNode                  `yaml:"query_nodes"`

	columnsByDataset map[string][]SourceColumn
	tcolsByDataset   map[string][]TargetColumn
	tdsByKey         map[string]TargetDataset
	dsInputsByDs     map[string][]TargetDatasetInput
	colInputsByCol   map[string][]TargetColumnInput
	refsByChild      map[string][]TargetDatasetReference
	joinsByDataset   map[string][]TargetDatasetJoin
	queryNodesByID   map[string]QueryNode
}

// LoadYAML reads a Static catalog snapshot from path.
func LoadYAML(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var s Static
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	s.index()
	return &s, nil
}

// NewStatic builds a Static catalog directly from in-memory slices, used by
// tests that construct fixtures programmatically rather than via YAML.
func NewStatic(s Static) *Static {
	s.index()
	return &s
}

func (s *Static) index() {
	s.columnsByDataset = map[string][]SourceColumn{}
	for _, c := range s.Columns {
		s.columnsByDataset[c.Dataset] = append(s.columnsByDataset[c.Dataset], c)
	}
	s.tcolsByDataset = map[string][]TargetColumn{}
	for _, c := range s.TColumns {
		s.tcolsByDataset[c.Dataset] = append(s.tcolsByDataset[c.Dataset], c)
	}
	s.tdsByKey = map[string]TargetDataset{}
	for _, d := range s.TDatasets {
		s.tdsByKey[d.Key()] = d
	}
	s.dsInputsByDs = map[string][]TargetDatasetInput{}
	for _, e := range s.DatasetEdges {
		s.dsInputsByDs[e.Dataset] = append(s.dsInputsByDs[e.Dataset], e)
	}
	s.colInputsByCol = map[string][]TargetColumnInput{}
	for _, e := range s.ColumnEdges {
		s.colInputsByCol[e.Column] = append(s.colInputsByCol[e.Column], e)
	}
	s.refsByChild = map[string][]TargetDatasetReference{}
	for _, r := range s.References {
		s.refsByChild[r.ChildDataset] = append(s.refsByChild[r.ChildDataset], r)
	}
	s.joinsByDataset = map[string][]TargetDatasetJoin{}
	for _, j := range s.Joins {
		s.joinsByDataset[j.Dataset] = append(s.joinsByDataset[j.Dataset], j)
	}
	s.queryNodesByID = map[string]QueryNode{}
	for _, n := range s.QueryNodes {
		s.queryNodesByID[n.ID] = n
	}
}

func (s *Static) SourceSystems() []SourceSystem             { return s.Systems }
func (s *Static) SourceDatasets() []SourceDataset           { return s.Datasets }
func (s *Static) SourceColumns(datasetKey string) []SourceColumn {
	return s.columnsByDataset[datasetKey]
}
func (s *Static) SourceDatasetGroups() []SourceDatasetGroup { return s.Groups }

func (s *Static) TargetSchemas() []TargetSchema { return s.Schemas }

func (s *Static) TargetDatasets(schema string) []TargetDataset {
	out := make([]TargetDataset, 0, len(s.TDatasets))
	for _, d := range s.TDatasets {
		if d.Schema == schema {
			out = append(out, d)
		}
	}
	return out
}

func (s *Static) TargetDataset(key string) (TargetDataset, bool) {
	d, ok := s.tdsByKey[key]
	return d, ok
}

func (s *Static) TargetColumns(datasetKey string) []TargetColumn {
	return s.tcolsByDataset[datasetKey]
}

func (s *Static) TargetDatasetInputs(datasetKey string) []TargetDatasetInput {
	return s.dsInputsByDs[datasetKey]
}

func (s *Static) TargetColumnInputs(datasetKey string) []TargetColumnInput {
	// ColumnEdges are keyed by "<dataset key>.<column name>".
	prefix := datasetKey + "."
	var out []TargetColumnInput
	for _, e := range s.ColumnEdges {
		if len(e.Column) > len(prefix) && e.Column[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out
}

func (s *Static) TargetDatasetReferences(childDataset string) []TargetDatasetReference {
	return s.refsByChild[childDataset]
}

func (s *Static) TargetDatasetJoins(datasetKey string) []TargetDatasetJoin {
	return s.joinsByDataset[datasetKey]
}

func (s *Static) QueryNode(id string) (QueryNode, bool) {
	n, ok := s.queryNodesByID[id]
	return n, ok
}
