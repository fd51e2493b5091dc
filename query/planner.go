// Package query turns list requests into index queries on the platewise table.
//
// Each entity type has a fixed set of filterable attributes and at most one
// date attribute. A request selects either every row of its type, rows whose
// attribute matches a value, or rows inside a date range; never a mix.
package query

import (
	"slices"
	"time"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/store"
)

// Page sizes.
const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// SupportedLimits are the page sizes a request may ask for.
var SupportedLimits = []int{10, 25, 50, 100}

// Filter narrows a listing. Attribute and Value go together; StartDate and
// EndDate may each be given alone.
type Filter struct {
	Attribute string
	Value     string
	StartDate string
	EndDate   string
}

// Request is a list request for one entity type. Limit 0 means DefaultLimit.
// Descending walks the index from its highest range key, so a date range
// lists newest first.
type Request struct {
	Type       string
	Filter     Filter
	Limit      int
	Descending bool
}

type typeRules struct {
	// attrs maps each filterable attribute to its comparison.
	attrs map[string]store.Operator

	// dateAttr is the attribute date ranges apply to, empty if unsupported.
	dateAttr string
}

var rules = map[string]typeRules{
	entity.TypeFoodItem: {
		attrs: map[string]store.Operator{
			"foodName":   store.OpBeginsWith,
			"foodOrigin": store.OpBeginsWith,
		},
	},
	entity.TypeUser: {
		attrs: map[string]store.Operator{
			"userName":  store.OpBeginsWith,
			"userEmail": store.OpBeginsWith,
		},
		dateAttr: "created",
	},
	entity.TypeReview: {
		attrs: map[string]store.Operator{
			entity.AttrFoodID: store.OpEqual,
			entity.AttrUserID: store.OpEqual,
		},
		dateAttr: "reviewDate",
	},
}

// Planner maps requests to index queries.
type Planner struct {
	config store.Config
}

// NewPlanner creates a Planner for a table laid out as cfg describes.
func NewPlanner(cfg store.Config) *Planner {
	return &Planner{config: cfg}
}

// Plan returns the index query serving req, or a *platewise.ValidationError
// when req asks for something the indexes can't serve.
func (p *Planner) Plan(req Request) (store.QueryInput, error) {
	r, ok := rules[req.Type]
	if !ok {
		return store.QueryInput{}, platewise.Invalid("entityType", "unknown entity type %q", req.Type)
	}

	limit, err := pageSize(req.Limit)
	if err != nil {
		return store.QueryInput{}, err
	}

	f := req.Filter
	hasAttr := f.Attribute != ""
	hasValue := f.Value != ""
	hasRange := f.StartDate != "" || f.EndDate != ""

	var cond store.KeyCondition
	switch {
	case hasAttr && !hasValue:
		return store.QueryInput{}, platewise.Invalid("value", "is required when filtering on %q", f.Attribute)
	case hasValue && !hasAttr:
		return store.QueryInput{}, platewise.Invalid("attribute", "is required when a filter value is given")
	case hasAttr && hasRange:
		return store.QueryInput{}, &platewise.ValidationError{Reason: "an attribute filter can't be combined with a date range"}
	case hasAttr:
		cond, err = attributeCondition(req.Type, r, f)
	case hasRange:
		cond, err = rangeCondition(req.Type, r, f)
	default:
		cond = store.KeyCondition{EntityType: req.Type}
	}
	if err != nil {
		return store.QueryInput{}, err
	}

	return store.QueryInput{
		IndexName:  p.config.IndexName(cond.Attribute),
		Condition:  cond,
		Limit:      int32(limit),
		Descending: req.Descending,
	}, nil
}

func pageSize(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if !slices.Contains(SupportedLimits, limit) {
		return 0, platewise.Invalid("limit", "must be one of %v", SupportedLimits)
	}
	return limit, nil
}

func attributeCondition(entityType string, r typeRules, f Filter) (store.KeyCondition, error) {
	op, ok := r.attrs[f.Attribute]
	if !ok {
		return store.KeyCondition{}, platewise.Invalid("attribute", "%q is not filterable on %s", f.Attribute, entityType)
	}
	return store.KeyCondition{
		EntityType: entityType,
		Attribute:  f.Attribute,
		Op:         op,
		Values:     []string{f.Value},
	}, nil
}

func rangeCondition(entityType string, r typeRules, f Filter) (store.KeyCondition, error) {
	if r.dateAttr == "" {
		return store.KeyCondition{}, platewise.Invalid("startDate", "date ranges are not supported on %s", entityType)
	}

	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = parseDate("startDate", f.StartDate, false); err != nil {
			return store.KeyCondition{}, err
		}
	}
	if f.EndDate != "" {
		if end, err = parseDate("endDate", f.EndDate, true); err != nil {
			return store.KeyCondition{}, err
		}
	}

	cond := store.KeyCondition{EntityType: entityType, Attribute: r.dateAttr}
	switch {
	case f.StartDate != "" && f.EndDate != "":
		if start.After(end) {
			return store.KeyCondition{}, platewise.Invalid("startDate", "must not be after endDate")
		}
		if ceilSecond(start).After(end) {
			return store.KeyCondition{}, platewise.Invalid("startDate", "range does not contain a whole second")
		}
		cond.Op = store.OpBetween
		cond.Values = []string{formatDate(ceilSecond(start)), formatDate(end)}
	case f.StartDate != "":
		cond.Op = store.OpGreaterOrEqual
		cond.Values = []string{formatDate(ceilSecond(start))}
	default:
		cond.Op = store.OpLessOrEqual
		cond.Values = []string{formatDate(end)}
	}
	return cond, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare date is the start of that
// day, or its last second when endOfDay is set.
func parseDate(field, s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, platewise.Invalid(field, "%q is not a YYYY-MM-DD or RFC 3339 date", s)
}

// ceilSecond rounds t up to a whole second. Stored dates carry no fraction,
// so a start of 10:00:00.5 must not match a row written at 10:00:00.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

// formatDate renders t to the second. Fractions are dropped, which is the
// floor an end bound needs.
func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
