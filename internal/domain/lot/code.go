package lot

import (
	"fmt"
	"strings"
)

// IntakeCodePrefix prefijo de los códigos asignados al ingresar un lote.
const IntakeCodePrefix = "PROD"

// IntakeCode código de un lote recién ingresado: PROD{id}.
func IntakeCode(id int64) string {
	return fmt.Sprintf("%s%d", IntakeCodePrefix, id)
}

// BasePrefix parte del código antes del primer "_" (el código completo si no hay separador).
func BasePrefix(code string) string {
	if i := strings.Index(code, "_"); i >= 0 {
		return code[:i]
	}
	return code
}

// DeriveTemporaryCode deriva el código de un lote separado o recuperado.
// n es la cantidad de hermanos no terminales que comparten BasePrefix(code).
// Si el código ya contiene la marca "T" se reemplaza desde la marca; si no, se agrega "_T{n}".
func DeriveTemporaryCode(code string, n int64) string {
	if i := strings.Index(code, "T"); i >= 0 {
		return fmt.Sprintf("%sT%d", code[:i], n)
	}
	return fmt.Sprintf("%s_T%d", code, n)
}
