package planner

import (
	"fmt"
	"strings"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
)

// VarValue is one "SET variable = value" assignment.
type VarValue struct {
	Variable string
	Value    string
}

// SettingPlan changes session settings; it produces no rows.
type SettingPlan struct {
	Vars []VarValue
}

func NewSettingPlan(vars ...VarValue) *SettingPlan {
	return &SettingPlan{Vars: vars}
}

func (p *SettingPlan) Schema() (*catalog.Schema, error) {
	return nil, common.NewError(common.SchemaUnavailable, "schema of %s is not derivable", p.Name())
}

func (p *SettingPlan) Name() string {
	return "SetVariablePlan"
}

func (p *SettingPlan) String() string {
	parts := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		parts[i] = fmt.Sprintf("%s=%s", v.Variable, v.Value)
	}
	return "SetVariable: " + strings.Join(parts, ", ")
}

func (p *SettingPlan) isPlanNode() {}
