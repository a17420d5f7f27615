package avm

import "github.com/zkavm/avmc/internal/diag"

func constraintShapeErr(v Var) error {
	return diag.Errorf(diag.KindShape, "expected a scalar signal, got shape %v", v.Shape)
}
