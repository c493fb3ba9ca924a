package planner

import (
	"fmt"

	"github.com/fusedb/fusedb/catalog"
	"github.com/fusedb/fusedb/common"
	"github.com/fusedb/fusedb/storage"
)

// Expr represents a node in a row expression tree.
// Expressions are stateless and immutable, so one expression instance may be
// evaluated concurrently by every lane of a pipeline.
type Expr interface {
	// Eval evaluates the expression against the provided tuple.
	Eval(t storage.Tuple) common.Value

	// OutputType returns the type of value this expression produces.
	OutputType() common.Type

	// Name returns the column name this expression produces in a projection.
	Name() string

	// String returns a string representation of the expression.
	String() string
}

// ColumnExpr reads one column of the input tuple. It is bound to a column
// position when it is created, against the schema of the plan it reads from.
type ColumnExpr struct {
	offset     int
	outputType common.Type
	name       string
}

// NewColumnExpr binds the named column of schema.
func NewColumnExpr(schema *catalog.Schema, name string) (*ColumnExpr, error) {
	offset, ok := schema.IndexOf(name)
	if !ok {
		return nil, common.NewError(common.InvalidPlanBuilder, "column '%s' not found in %s", name, schema)
	}
	return &ColumnExpr{offset: offset, outputType: schema.Column(offset).Type, name: name}, nil
}

func (e *ColumnExpr) Eval(t storage.Tuple) common.Value {
	return t.GetValue(e.offset)
}

func (e *ColumnExpr) OutputType() common.Type {
	return e.outputType
}

func (e *ColumnExpr) Name() string {
	return e.name
}

func (e *ColumnExpr) String() string {
	return e.name
}

// Offset returns the bound column position.
func (e *ColumnExpr) Offset() int {
	return e.offset
}

type LiteralExpr struct {
	val common.Value
}

func NewLiteralExpr(val common.Value) *LiteralExpr {
	common.Assert(!val.IsNil(), "literal must be typed")
	return &LiteralExpr{val: val}
}

func (e *LiteralExpr) Eval(storage.Tuple) common.Value {
	return e.val
}

func (e *LiteralExpr) OutputType() common.Type {
	return e.val.Type()
}

func (e *LiteralExpr) Name() string {
	return e.String()
}

func (e *LiteralExpr) String() string {
	if e.val.IsNull() {
		return "NULL"
	}
	if e.val.Type() == common.StringType {
		return fmt.Sprintf("'%s'", e.val.StringValue())
	}
	return fmt.Sprintf("%d", e.val.IntValue())
}

// AliasExpr renames the output column of its child.
type AliasExpr struct {
	child Expr
	alias string
}

func NewAliasExpr(child Expr, alias string) *AliasExpr {
	return &AliasExpr{child: child, alias: alias}
}

func (e *AliasExpr) Eval(t storage.Tuple) common.Value {
	return e.child.Eval(t)
}

func (e *AliasExpr) OutputType() common.Type {
	return e.child.OutputType()
}

func (e *AliasExpr) Name() string {
	return e.alias
}

func (e *AliasExpr) String() string {
	return fmt.Sprintf("%s AS %s", e.child.String(), e.alias)
}

type ComparisonType int

const (
	Equal ComparisonType = iota
	NotEqual
	GreaterThan
	LessThan
	GreaterThanOrEqual
	LessThanOrEqual
)

func (c ComparisonType) String() string {
	switch c {
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterThanOrEqual:
		return ">="
	case LessThanOrEqual:
		return "<="
	}
	return "???"
}

// ComparisonExpr compares two values of the same type. Booleans are encoded
// as the integers 1 and 0, and a comparison involving NULL is NULL.
type ComparisonExpr struct {
	left     Expr
	right    Expr
	compType ComparisonType
}

func NewComparisonExpr(left Expr, right Expr, compType ComparisonType) *ComparisonExpr {
	return &ComparisonExpr{left: left, right: right, compType: compType}
}

func (e *ComparisonExpr) Eval(t storage.Tuple) common.Value {
	val1 := e.left.Eval(t)
	val2 := e.right.Eval(t)
	if val1.IsNull() || val2.IsNull() {
		return common.NewNullInt()
	}

	cmp := val1.Compare(val2)
	switch e.compType {
	case Equal:
		return common.NewBoolValue(cmp == 0)
	case NotEqual:
		return common.NewBoolValue(cmp != 0)
	case GreaterThan:
		return common.NewBoolValue(cmp > 0)
	case LessThan:
		return common.NewBoolValue(cmp < 0)
	case GreaterThanOrEqual:
		return common.NewBoolValue(cmp >= 0)
	case LessThanOrEqual:
		return common.NewBoolValue(cmp <= 0)
	}
	common.Assert(false, "unknown comparison type %d", e.compType)
	return common.NewNullInt()
}

func (e *ComparisonExpr) OutputType() common.Type {
	return common.IntType
}

func (e *ComparisonExpr) Name() string {
	return e.String()
}

func (e *ComparisonExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.left, e.compType, e.right)
}

// IsTrue reports whether v is a non-NULL, non-zero integer.
func IsTrue(v common.Value) bool {
	return v.Type() == common.IntType && !v.IsNull() && v.IntValue() != 0
}

// IsFalse reports whether v is a non-NULL zero integer.
func IsFalse(v common.Value) bool {
	return v.Type() == common.IntType && !v.IsNull() && v.IntValue() == 0
}

type LogicType int

const (
	And LogicType = iota
	Or
)

func (l LogicType) String() string {
	switch l {
	case And:
		return "AND"
	case Or:
		return "OR"
	}
	return "???"
}

// LogicExpr implements three-valued AND / OR.
type LogicExpr struct {
	left      Expr
	right     Expr
	logicType LogicType
}

func NewLogicExpr(left Expr, right Expr, logicType LogicType) *LogicExpr {
	return &LogicExpr{left: left, right: right, logicType: logicType}
}

// NewConjunction folds a CNF clause list into nested ANDs. An empty list is TRUE.
func NewConjunction(clauses []Expr) Expr {
	if len(clauses) == 0 {
		return NewLiteralExpr(common.NewBoolValue(true))
	}
	out := clauses[0]
	for _, c := range clauses[1:] {
		out = NewLogicExpr(out, c, And)
	}
	return out
}

func (e *LogicExpr) Eval(t storage.Tuple) common.Value {
	val1 := e.left.Eval(t)
	val2 := e.right.Eval(t)

	switch e.logicType {
	case And:
		if IsFalse(val1) || IsFalse(val2) {
			return common.NewIntValue(0)
		}
		if IsTrue(val1) && IsTrue(val2) {
			return common.NewIntValue(1)
		}
	case Or:
		if IsTrue(val1) || IsTrue(val2) {
			return common.NewIntValue(1)
		}
		if IsFalse(val1) && IsFalse(val2) {
			return common.NewIntValue(0)
		}
	default:
		common.Assert(false, "unknown logic type %d", e.logicType)
	}
	return common.NewNullInt()
}

func (e *LogicExpr) OutputType() common.Type {
	return common.IntType
}

func (e *LogicExpr) Name() string {
	return e.String()
}

func (e *LogicExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.left, e.logicType, e.right)
}

type NotExpr struct {
	child Expr
}

func NewNotExpr(child Expr) *NotExpr {
	return &NotExpr{child: child}
}

func (e *NotExpr) Eval(t storage.Tuple) common.Value {
	val := e.child.Eval(t)
	if val.IsNull() {
		return common.NewNullInt()
	}
	return common.NewBoolValue(!IsTrue(val))
}

func (e *NotExpr) OutputType() common.Type {
	return common.IntType
}

func (e *NotExpr) Name() string {
	return e.String()
}

func (e *NotExpr) String() string {
	return fmt.Sprintf("NOT %s", e.child)
}

// IsNullExpr implements IS NULL, or IS NOT NULL when negated.
type IsNullExpr struct {
	child   Expr
	negated bool
}

func NewIsNullExpr(child Expr, negated bool) *IsNullExpr {
	return &IsNullExpr{child: child, negated: negated}
}

func (e *IsNullExpr) Eval(t storage.Tuple) common.Value {
	return common.NewBoolValue(e.child.Eval(t).IsNull() != e.negated)
}

func (e *IsNullExpr) OutputType() common.Type {
	return common.IntType
}

func (e *IsNullExpr) Name() string {
	return e.String()
}

func (e *IsNullExpr) String() string {
	if e.negated {
		return fmt.Sprintf("(%s IS NOT NULL)", e.child)
	}
	return fmt.Sprintf("(%s IS NULL)", e.child)
}

type ArithmeticType int

const (
	Add ArithmeticType = iota
	Sub
	Mult
	Div
	Mod
)

func (a ArithmeticType) String() string {
	switch a {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mult:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	}
	return "?"
}

// ArithmeticExpr operates on integers. NULL operands and division by zero
// produce NULL.
type ArithmeticExpr struct {
	left  Expr
	right Expr
	op    ArithmeticType
}

func NewArithmeticExpr(left Expr, right Expr, op ArithmeticType) *ArithmeticExpr {
	return &ArithmeticExpr{left: left, right: right, op: op}
}

func (e *ArithmeticExpr) Eval(t storage.Tuple) common.Value {
	val1 := e.left.Eval(t)
	val2 := e.right.Eval(t)
	if val1.IsNull() || val2.IsNull() {
		return common.NewNullInt()
	}

	v1, v2 := val1.IntValue(), val2.IntValue()
	switch e.op {
	case Add:
		return common.NewIntValue(v1 + v2)
	case Sub:
		return common.NewIntValue(v1 - v2)
	case Mult:
		return common.NewIntValue(v1 * v2)
	case Div:
		if v2 == 0 {
			return common.NewNullInt()
		}
		return common.NewIntValue(v1 / v2)
	case Mod:
		if v2 == 0 {
			return common.NewNullInt()
		}
		return common.NewIntValue(v1 % v2)
	}
	common.Assert(false, "unknown arithmetic type %d", e.op)
	return common.NewNullInt()
}

func (e *ArithmeticExpr) OutputType() common.Type {
	return common.IntType
}

func (e *ArithmeticExpr) Name() string {
	return e.String()
}

func (e *ArithmeticExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.left, e.op, e.right)
}
