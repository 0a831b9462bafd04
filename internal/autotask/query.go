package autotask

// Filter operators understood by the Autotask query endpoints.
const (
	OpEq         = "eq"
	OpNotEq      = "noteq"
	OpGt         = "gt"
	OpGte        = "gte"
	OpLt         = "lt"
	OpLte        = "lte"
	OpBeginsWith = "beginsWith"
	OpEndsWith   = "endsWith"
	OpContains   = "contains"
	OpExist      = "exist"
	OpNotExist   = "notexist"
)

// Filter is one condition in a query body. Array order is preserved verbatim
// when the filter list is forwarded upstream.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value,omitempty"`
}

// SortExpr is one sort directive in a query body.
type SortExpr struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// QueryBody is a typed POST /query request. Passthrough tools forward
// free-form bodies instead; this type is for queries the server builds
// itself, where companyID in particular must stay a number on the wire.
type QueryBody struct {
	Filter     []Filter   `json:"filter,omitempty"`
	MaxRecords int        `json:"maxRecords,omitempty"`
	Sort       []SortExpr `json:"sort,omitempty"`
}
