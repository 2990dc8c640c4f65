package masterdata

import (
	"fmt"
	"sort"
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBool
	// KindCollege is a college code, shown and searched by college name.
	KindCollege
)

type Field struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Kind       Kind   `json:"kind"`
	Required   bool   `json:"required"`
	Searchable bool   `json:"searchable"`
}

type Endpoints struct {
	List   string
	Save   string
	Update string
	Delete string
}

// Definition describes one master-data entity as the gateway exposes it.
type Definition struct {
	Name      string
	Noun      string
	Title     string
	IDField   string
	IDLabel   string
	Fields    []Field
	Endpoints Endpoints
	FileName  string
}

const CollegeListPath = "/college/list"

func endpointsFor(prefix string) Endpoints {
	return Endpoints{
		List:   "/" + prefix + "/list",
		Save:   "/" + prefix + "/save",
		Update: "/" + prefix + "/update",
		Delete: "/" + prefix + "/delete",
	}
}

var (
	Category = Definition{
		Name:    "category",
		Noun:    "Category",
		Title:   "Category List",
		IDField: "id",
		IDLabel: "ID",
		Fields: []Field{
			{Key: "collegeCode", Label: "College", Kind: KindCollege, Required: true, Searchable: true},
			{Key: "categoryName", Label: "Category Name", Kind: KindText, Required: true, Searchable: true},
		},
		Endpoints: endpointsFor("category"),
		FileName:  "categories",
	}

	Department = Definition{
		Name:    "department",
		Noun:    "Department",
		Title:   "Department List",
		IDField: "deptCode",
		IDLabel: "Dept Code",
		Fields: []Field{
			{Key: "collegeCode", Label: "College", Kind: KindCollege, Required: true, Searchable: true},
			{Key: "deptName", Label: "Department Name", Kind: KindText, Required: true, Searchable: true},
			{Key: "deptShortName", Label: "Short Name", Kind: KindText, Searchable: true},
		},
		Endpoints: endpointsFor("department"),
		FileName:  "departments",
	}

	Deduction = Definition{
		Name:    "deduction",
		Noun:    "Deduction",
		Title:   "Deduction Heads",
		IDField: "deductionId",
		IDLabel: "Deduction ID",
		Fields: []Field{
			{Key: "collegeCode", Label: "College", Kind: KindCollege, Required: true, Searchable: true},
			{Key: "deductionName", Label: "Deduction Name", Kind: KindText, Required: true, Searchable: true},
			{Key: "deductionType", Label: "Type", Kind: KindText, Required: true, Searchable: true},
			{Key: "isActive", Label: "Active", Kind: KindBool},
		},
		Endpoints: endpointsFor("deduction"),
		FileName:  "deductions",
	}

	LeaveType = Definition{
		Name:    "leavetype",
		Noun:    "Leave type",
		Title:   "Company Leave Types",
		IDField: "lvId",
		IDLabel: "Leave ID",
		Fields: []Field{
			{Key: "lvName", Label: "Leave Name", Kind: KindText, Required: true, Searchable: true},
			{Key: "lvCode", Label: "Leave Code", Kind: KindText, Required: true, Searchable: true},
			{Key: "maxDays", Label: "Max Days", Kind: KindNumber, Required: true},
			{Key: "carryForward", Label: "Carry Forward", Kind: KindBool},
		},
		Endpoints: endpointsFor("leavetype"),
		FileName:  "leave-types",
	}
)

var registry = map[string]Definition{
	Category.Name:   Category,
	Department.Name: Department,
	Deduction.Name:  Deduction,
	LeaveType.Name:  LeaveType,
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, error) {
	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return def, nil
}

// All returns every registered definition ordered by name.
func All() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, def := range registry {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d Definition) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// UsesColleges reports whether any field references the college lookup.
func (d Definition) UsesColleges() bool {
	for _, f := range d.Fields {
		if f.Kind == KindCollege {
			return true
		}
	}
	return false
}
