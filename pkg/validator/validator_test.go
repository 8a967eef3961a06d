package validator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/pkg/validator"
)

type lineReq struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"dgt0"`
	WeightKg  *decimal.Decimal `json:"weight_kg" validate:"omitempty,dgte0"`
}

type req struct {
	Lines []lineReq `json:"lines" validate:"required,min=1,dive"`
}

func TestValidateStruct_Valido(t *testing.T) {
	w := decimal.NewFromInt(0)
	r := req{Lines: []lineReq{{ProductID: "20000000-0000-0000-0000-000000000001", Quantity: decimal.NewFromInt(5), WeightKg: &w}}}
	assert.Nil(t, validator.ValidateStruct(r))
}

func TestValidateStruct_ReportaCamposJSON(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	r := req{Lines: []lineReq{{ProductID: "x", Quantity: decimal.Zero, WeightKg: &neg}}}

	errs := validator.ValidateStruct(r)
	require.Len(t, errs, 3)
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Tag
	}
	assert.Equal(t, "uuid", fields["lines[0].product_id"])
	assert.Equal(t, "dgt0", fields["lines[0].quantity"])
	assert.Equal(t, "dgte0", fields["lines[0].weight_kg"])
}

func TestValidateStruct_SinLineas(t *testing.T) {
	errs := validator.ValidateStruct(req{})
	require.Len(t, errs, 1)
	assert.Equal(t, "lines", errs[0].Field)
	assert.Equal(t, "required", errs[0].Tag)
}
