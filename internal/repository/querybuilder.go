package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/metakai1/landsearch/internal/model"
)

// CompiledQuery is the result of compiling SearchParams: a conjunctive WHERE
// clause with positional arguments, plus an ORDER BY clause. Argument
// placeholders start at $1; callers appending further parameters continue
// from NextIndex.
type CompiledQuery struct {
	Where     string
	Args      []interface{}
	OrderBy   string
	NextIndex int
}

// CompileSearchQuery translates search parameters into SQL predicate fragments
// over the metadata JSONB column. It is a pure translation: the input is never
// mutated and no I/O happens here. Supplied fields narrow results (AND across
// fields); within an array field, membership is OR. Absent or empty fields add
// no predicate. Malformed ranges fail with InvalidParamsError.
func CompileSearchQuery(params *model.SearchParams, opts *model.SearchOptions) (*CompiledQuery, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	clauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	addClause := func(format string, value interface{}) {
		clauses = append(clauses, fmt.Sprintf(format, argIndex))
		args = append(args, value)
		argIndex++
	}

	if params != nil {
		if len(params.Names) > 0 {
			addClause("metadata->>'name' = ANY($%d::text[])", stringArray(params.Names))
		}
		if len(params.Neighborhoods) > 0 {
			addClause("metadata->>'neighborhood' = ANY($%d::text[])", stringArray(params.Neighborhoods))
		}
		if len(params.ZoningTypes) > 0 {
			values := make([]string, len(params.ZoningTypes))
			for i, z := range params.ZoningTypes {
				values[i] = string(z)
			}
			addClause("metadata->>'zoning' = ANY($%d::text[])", stringArray(values))
		}
		if len(params.PlotSizes) > 0 {
			values := make([]string, len(params.PlotSizes))
			for i, p := range params.PlotSizes {
				values[i] = string(p)
			}
			addClause("metadata->>'plotSize' = ANY($%d::text[])", stringArray(values))
		}
		if len(params.BuildingTypes) > 0 {
			values := make([]string, len(params.BuildingTypes))
			for i, b := range params.BuildingTypes {
				values[i] = string(b)
			}
			addClause("metadata->>'buildingType' = ANY($%d::text[])", stringArray(values))
		}

		if params.Distances != nil {
			compileDistance(params.Distances.Ocean, "ocean", addClause)
			compileDistance(params.Distances.Bay, "bay", addClause)
		}

		if params.Building != nil {
			compileRange(params.Building.Floors, "(metadata->'building'->'floors'->>'min')::numeric", "(metadata->'building'->'floors'->>'max')::numeric", addClause)
			compileRange(params.Building.Height, "(metadata->'building'->'height'->>'min')::numeric", "(metadata->'building'->'height'->>'max')::numeric", addClause)
		}

		if params.Rarity != nil && params.Rarity.RankRange != nil {
			rank := "(metadata->>'rank')::int"
			compileRange(params.Rarity.RankRange, rank, rank, addClause)
		}

		if params.TokenID != "" {
			addClause("metadata->>'tokenId' = $%d", params.TokenID)
		}
	}

	orderBy, err := compileOrderBy(opts)
	if err != nil {
		return nil, err
	}

	return &CompiledQuery{
		Where:     strings.Join(clauses, " AND "),
		Args:      args,
		OrderBy:   orderBy,
		NextIndex: argIndex,
	}, nil
}

// compileDistance adds the maxMeters and category predicates for one feature.
// Both apply independently when supplied; an inconsistent pair yields an empty
// result set, which is accepted behavior rather than an error.
func compileDistance(f *model.DistanceFilter, feature string, addClause func(string, interface{})) {
	if f == nil {
		return
	}
	if f.MaxMeters != nil {
		addClause("(metadata->'distances'->'"+feature+"'->>'meters')::int <= $%d", *f.MaxMeters)
	}
	if f.Category != nil {
		addClause("metadata->'distances'->'"+feature+"'->>'category' = $%d", string(*f.Category))
	}
}

// compileRange adds inclusive bound predicates: min compares against minExpr
// with >=, max against maxExpr with <=.
func compileRange(r *model.RangeFilter, minExpr, maxExpr string, addClause func(string, interface{})) {
	if r == nil {
		return
	}
	if r.Min != nil {
		addClause(minExpr+" >= $%d", *r.Min)
	}
	if r.Max != nil {
		addClause(maxExpr+" <= $%d", *r.Max)
	}
}

// orderExprs whitelists the sortable metadata expressions. Anything outside the
// whitelist is rejected rather than interpolated into SQL.
var orderExprs = map[model.OrderField]string{
	model.OrderByRank:          "(metadata->>'rank')::int",
	model.OrderByPlotArea:      "(metadata->>'plotArea')::numeric",
	model.OrderByOceanDistance: "(metadata->'distances'->'ocean'->>'meters')::int",
	model.OrderByBayDistance:   "(metadata->'distances'->'bay'->>'meters')::int",
}

func compileOrderBy(opts *model.SearchOptions) (string, error) {
	field := model.OrderByRank
	descending := false
	if opts != nil && opts.OrderBy != "" {
		field = opts.OrderBy
		descending = opts.Descending
	}

	expr, ok := orderExprs[field]
	if !ok {
		return "", &model.InvalidParamsError{Field: "orderBy", Reason: fmt.Sprintf("unsupported order field %q", field)}
	}

	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	return expr + " " + direction, nil
}

// stringArray adapts a string slice for a `= ANY($n::text[])` placeholder.
func stringArray(values []string) interface{} {
	return pq.Array(values)
}

func validateParams(params *model.SearchParams) error {
	if params == nil {
		return nil
	}
	if params.Building != nil {
		if err := validateRange(params.Building.Floors, "building.floors"); err != nil {
			return err
		}
		if err := validateRange(params.Building.Height, "building.height"); err != nil {
			return err
		}
	}
	if params.Rarity != nil {
		if err := validateRange(params.Rarity.RankRange, "rarity.rankRange"); err != nil {
			return err
		}
	}
	return nil
}

func validateRange(r *model.RangeFilter, field string) error {
	if r == nil || r.Min == nil || r.Max == nil {
		return nil
	}
	if *r.Min > *r.Max {
		return &model.InvalidParamsError{
			Field:  field,
			Reason: fmt.Sprintf("min %.2f greater than max %.2f", *r.Min, *r.Max),
		}
	}
	return nil
}
