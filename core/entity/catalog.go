package entity

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// catalogJSON is the bundled base catalog of manuscript characters and their
// standard diplomatic mappings.
//
//go:embed catalog.json
var catalogJSON []byte

type catalog struct {
	Entities   Table             `json:"entities"`
	Diplomatic map[string]string `json:"diplomatic"`
}

var baseCatalog catalog

func init() {
	if err := json.Unmarshal(catalogJSON, &baseCatalog); err != nil {
		panic(fmt.Sprintf("entity: bundled catalog is invalid: %v", err))
	}
}

// BaseTable returns a copy of the bundled entity table.
func BaseTable() Table {
	t := make(Table, len(baseCatalog.Entities))
	for name, e := range baseCatalog.Entities {
		t[name] = e
	}
	return t
}

// BaseMappings returns the bundled diplomatic mapping layer with no user
// overrides applied.
func BaseMappings() *Mappings {
	base := make(map[string]string, len(baseCatalog.Diplomatic))
	for name, v := range baseCatalog.Diplomatic {
		base[name] = v
	}
	return &Mappings{Base: base}
}
