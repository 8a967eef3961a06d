package domain

import "github.com/shopspring/decimal"

// Scale decimales que admiten cantidades, pesos y montos (NUMERIC(18, 4)).
const Scale = 4

// CheckScale rechaza valores con más decimales de los que guarda la base,
// que los redondearía en silencio.
func CheckScale(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(Scale)) {
		return Invalid("%s admite máximo %d decimales: %s", field, Scale, v)
	}
	return nil
}

// CheckScalePtr es CheckScale para campos opcionales.
func CheckScalePtr(field string, v *decimal.Decimal) error {
	if v == nil {
		return nil
	}
	return CheckScale(field, *v)
}
