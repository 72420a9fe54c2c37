package auth

import "errors"

// Taxonomía de fallas de los flujos. El borde HTTP las mapea a status
// codes con mensajes seguros (nunca se filtra texto interno en 401/409).
var (
	// ErrEmailTaken: el email ya tiene cuenta (registro duplicado).
	ErrEmailTaken = errors.New("email_taken")

	// ErrUnauthorized: credenciales malas, token inválido/vencido o de
	// variante equivocada, o cuenta inexistente post-verificación.
	ErrUnauthorized = errors.New("unauthorized")
)
