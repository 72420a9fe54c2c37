// Package oauth define el contrato común de los proveedores de
// identidad federada (google, linkedin).
package oauth

import "errors"

// ErrInvalid cubre credencial inválida/vencida, respuesta no-2xx,
// email ausente o proveedor inaccesible. El detalle viaja envuelto.
var ErrInvalid = errors.New("federation_invalid")

// Profile es el resultado canónico de verificar/intercambiar una
// credencial de terceros. Transitorio: se usa para find-or-create por email.
type Profile struct {
	Email    string
	Name     string
	Subject  string // id externo en el proveedor
	Provider string // "google" | "linkedin"
}
